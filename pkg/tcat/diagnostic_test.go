package tcat

import (
	"errors"
	"testing"
)

func TestParseDiagnosticTypes(t *testing.T) {
	got, err := ParseDiagnosticTypes([]string{"ext_address", "5", "0x17", "VENDOR_NAME"})
	if err != nil {
		t.Fatalf("ParseDiagnosticTypes failed: %v", err)
	}
	want := []byte{0, 5, 23, 25}
	if string(got) != string(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDiagnosticTypesRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty", nil},
		{"unknown name", []string{"5", "bad"}},
		{"out of range", []string{"256"}},
		{"negative", []string{"-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDiagnosticTypes(tt.args)
			if !errors.Is(err, ErrUnknownDiagnostic) {
				t.Errorf("expected ErrUnknownDiagnostic, got %v", err)
			}
		})
	}
}

func TestDiagnosticNamesOrdered(t *testing.T) {
	names := DiagnosticNames()
	if len(names) == 0 {
		t.Fatal("no diagnostic names")
	}
	if names[0].Name != "EXT_ADDRESS" {
		t.Errorf("first name = %s, want EXT_ADDRESS", names[0].Name)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1].Type >= names[i].Type {
			t.Fatalf("names not strictly ordered at %d: %v", i, names[i])
		}
	}
}

func TestTypeString(t *testing.T) {
	if got := GetPskdHash.String(); got != "GET_PSKD_HASH" {
		t.Errorf("GetPskdHash.String() = %q", got)
	}
	if got := Type(0xEE).String(); got != "UNKNOWN(0xee)" {
		t.Errorf("unknown type string = %q", got)
	}
	if !ResponseWithPayload.IsResponse() || Ping.IsResponse() {
		t.Error("IsResponse classification wrong")
	}
}

func TestStatusString(t *testing.T) {
	if StatusHashError.String() != "hash error" {
		t.Errorf("StatusHashError = %q", StatusHashError.String())
	}
	if Status(200).String() != "unknown" {
		t.Errorf("Status(200) = %q", Status(200).String())
	}
}
