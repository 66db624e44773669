// Package dataset holds the commissioning dataset exchanged with a TCAT
// device. The dataset is treated as an opaque byte blob; the only structure
// exposed is a listing of its MeshCoP records for display.
package dataset

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/cryptobyte"
)

// ErrMalformedDataset is returned when dataset bytes cannot be split into
// MeshCoP records.
var ErrMalformedDataset = errors.New("malformed dataset")

// extendedLength marks a record whose length is carried in the next two bytes.
const extendedLength = 0xFF

// Record is a single MeshCoP record of a dataset.
type Record struct {
	Type  uint8
	Value []byte
}

// Name returns the display name of the record type.
func (r Record) Name() string {
	if name, ok := recordNames[r.Type]; ok {
		return name
	}
	return fmt.Sprintf("Type %d", r.Type)
}

var recordNames = map[uint8]string{
	0:  "Channel",
	1:  "PAN ID",
	2:  "Extended PAN ID",
	3:  "Network Name",
	4:  "PSKc",
	5:  "Network Key",
	6:  "Network Key Sequence",
	7:  "Mesh Local Prefix",
	8:  "Steering Data",
	9:  "Border Agent Locator",
	10: "Commissioner ID",
	11: "Commissioner Session ID",
	12: "Security Policy",
	14: "Active Timestamp",
	15: "Commissioner UDP Port",
	16: "State",
	18: "Joiner UDP Port",
	51: "Pending Timestamp",
	52: "Delay Timer",
	53: "Channel Mask",
	74: "Wake-up Channel",
}

// Dataset is a commissioning dataset. The zero value is an empty dataset.
type Dataset struct {
	raw []byte
}

// New returns a dataset holding a copy of data.
func New(data []byte) (*Dataset, error) {
	d := &Dataset{}
	if err := d.SetFromBytes(data); err != nil {
		return nil, err
	}
	return d, nil
}

// FromHex parses a hex string into a dataset.
func FromHex(s string) (*Dataset, error) {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	return New(data)
}

// Bytes returns the serialized dataset. A nil dataset has no bytes.
func (d *Dataset) Bytes() []byte {
	if d == nil {
		return nil
	}
	return d.raw
}

// Empty reports whether the dataset has no content.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.raw) == 0
}

// SetFromBytes replaces the dataset content. The bytes must form a sequence of
// complete MeshCoP records; on error the dataset is left unchanged.
func (d *Dataset) SetFromBytes(data []byte) error {
	if _, err := parseRecords(data); err != nil {
		return err
	}
	d.raw = append([]byte(nil), data...)
	return nil
}

// Clear empties the dataset.
func (d *Dataset) Clear() {
	d.raw = nil
}

// Records splits the dataset into its MeshCoP records.
func (d *Dataset) Records() []Record {
	recs, _ := parseRecords(d.Bytes())
	return recs
}

// Hex returns the dataset as a lowercase hex string.
func (d *Dataset) Hex() string {
	return hex.EncodeToString(d.Bytes())
}

// Print writes a human readable listing of the dataset to w.
func (d *Dataset) Print(w io.Writer) {
	if d.Empty() {
		fmt.Fprintln(w, "Dataset is empty.")
		return
	}
	for _, r := range d.Records() {
		fmt.Fprintf(w, "\t%s: %s\n", r.Name(), hex.EncodeToString(r.Value))
	}
}

func parseRecords(data []byte) ([]Record, error) {
	var recs []Record
	s := cryptobyte.String(data)
	for !s.Empty() {
		var typ, l8 uint8
		if !s.ReadUint8(&typ) || !s.ReadUint8(&l8) {
			return nil, fmt.Errorf("%w: truncated header", ErrMalformedDataset)
		}
		length := int(l8)
		if l8 == extendedLength {
			var l16 uint16
			if !s.ReadUint16(&l16) {
				return nil, fmt.Errorf("%w: truncated extended length", ErrMalformedDataset)
			}
			length = int(l16)
		}
		var value []byte
		if !s.ReadBytes(&value, length) {
			return nil, fmt.Errorf("%w: record %d wants %d bytes", ErrMalformedDataset, typ, length)
		}
		recs = append(recs, Record{Type: typ, Value: append([]byte(nil), value...)})
	}
	return recs, nil
}
