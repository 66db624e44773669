package command

import (
	"bytes"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/espressif/openthread/pkg/dataset"
	"github.com/espressif/openthread/pkg/session"
	"github.com/espressif/openthread/pkg/tcat"
	"github.com/espressif/openthread/pkg/tlv"
)

// reportResponse prints a status or payload response.
func reportResponse(w io.Writer, resp tlv.TLV) {
	switch tcat.Type(resp.Type) {
	case tcat.ResponseWithStatus:
		if len(resp.Value) == 0 {
			fmt.Fprintf(w, "Received %v.\n", ErrMalformedResponse)
			return
		}
		fmt.Fprintf(w, "Status: %s\n", tcat.Status(resp.Value[0]))
	case tcat.ResponseWithPayload:
		fmt.Fprintf(w, "Payload: %s\n", hex.EncodeToString(resp.Value))
		if printable(resp.Value) {
			fmt.Fprintf(w, "Text: %s\n", resp.Value)
		}
	default:
		fmt.Fprintf(w, "Response: %s\n", resp)
	}
}

func printable(b []byte) bool {
	if len(b) == 0 || !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func processApplicationLayers(resp tlv.TLV, sess *session.Session) {
	if tcat.Type(resp.Type) != tcat.ResponseWithPayload {
		fmt.Fprintln(sess.Out, "Application layers request error.")
		return
	}
	fmt.Fprintln(sess.Out, "Service names:")
	it := tlv.NewIterator(resp.Value)
	i := 0
	for rec, ok := it.Next(); ok; rec, ok = it.Next() {
		i++
		switch tcat.Type(rec.Type) {
		case tcat.ServiceNameUDP:
			fmt.Fprintf(sess.Out, "\tApplication %d is UDP service: %s\n", i, rec.Value)
		case tcat.ServiceNameTCP:
			fmt.Fprintf(sess.Out, "\tApplication %d is TCP service: %s\n", i, rec.Value)
		default:
			fmt.Fprintln(sess.Out, "\tUnknown service type.")
		}
	}
	if err := it.Err(); err != nil {
		fmt.Fprintf(sess.Out, "Received %v.\n", ErrMalformedResponse)
		sess.Logger.Debug("application layers", "error", err)
	}
}

func processDataset(resp tlv.TLV, sess *session.Session) {
	if tcat.Type(resp.Type) != tcat.ResponseWithPayload {
		fmt.Fprintln(sess.Out, "Dataset extraction error.")
		return
	}
	ds, err := dataset.New(resp.Value)
	if err != nil {
		fmt.Fprintln(sess.Out, "Dataset extraction error.")
		sess.Logger.Debug("dataset", "error", err)
		return
	}
	ds.Print(sess.Out)
	sess.Dataset = ds
}

func processCommissionerCertificate(resp tlv.TLV, sess *session.Session) {
	reportResponse(sess.Out, resp)
	if tcat.Type(resp.Type) != tcat.ResponseWithPayload {
		return
	}
	if c, err := x509.ParseCertificate(resp.Value); err == nil {
		fmt.Fprintf(sess.Out, "Subject: %s\n", c.Subject)
	}
}

func processPing(resp tlv.TLV, req request, sess *session.Session) {
	if !bytes.Equal(resp.Value, req.payload) {
		fmt.Fprintf(sess.Out, "Received %v.\n", ErrMalformedResponse)
	}
	fmt.Fprintf(sess.Out, "Roundtrip time: %.3f ms\n", float64(req.elapsed.Microseconds())/1000)
}
