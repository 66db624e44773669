package tlv

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/cryptobyte"
)

// Wire layout constants.
const (
	// HeaderLen is the size of the type and length fields.
	HeaderLen = 3

	// MaxValueLen is the largest value a single record can carry.
	MaxValueLen = 0xFFFF
)

var (
	// ErrMalformedRecord indicates a truncated or otherwise undecodable record.
	ErrMalformedRecord = errors.New("tlv: malformed record")

	// ErrValueTooLong indicates a value that does not fit the 2-byte length field.
	ErrValueTooLong = errors.New("tlv: value too long")
)

// TLV is one decoded record.
type TLV struct {
	Type  uint8
	Value []byte
}

// New returns a record of the given type. The value is not copied.
func New(typ uint8, value []byte) TLV {
	return TLV{Type: typ, Value: value}
}

// Bytes returns the wire encoding of the record.
func (t TLV) Bytes() ([]byte, error) {
	return Encode(t.Type, t.Value)
}

// Len returns the encoded size of the record.
func (t TLV) Len() int {
	return HeaderLen + len(t.Value)
}

// String returns a compact description for logs and diagnostics.
func (t TLV) String() string {
	return fmt.Sprintf("TLV(type=0x%02x, len=%d, value=%s)", t.Type, len(t.Value), hex.EncodeToString(t.Value))
}

// Encode produces [type][length][value]. No semantic validation is applied to
// the type or the value beyond length representability.
func Encode(typ uint8, value []byte) ([]byte, error) {
	if len(value) > MaxValueLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrValueTooLong, len(value), MaxValueLen)
	}

	b := cryptobyte.NewBuilder(make([]byte, 0, HeaderLen+len(value)))
	b.AddUint8(typ)
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(value)
	})
	return b.Bytes()
}

// MustEncode is like Encode but panics if the value is too long.
// Use it only for values whose size is bounded by the caller.
func MustEncode(typ uint8, value []byte) []byte {
	out, err := Encode(typ, value)
	if err != nil {
		panic(err)
	}
	return out
}

// Decode consumes exactly one record from the front of buf and returns it
// together with the bytes that follow it. The returned value aliases buf.
func Decode(buf []byte) (TLV, []byte, error) {
	s := cryptobyte.String(buf)

	var typ uint8
	if !s.ReadUint8(&typ) {
		return TLV{}, nil, fmt.Errorf("%w: missing type", ErrMalformedRecord)
	}

	var value cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&value) {
		return TLV{}, nil, fmt.Errorf("%w: truncated record of type 0x%02x (%d bytes available)",
			ErrMalformedRecord, typ, len(buf))
	}

	return TLV{Type: typ, Value: []byte(value)}, []byte(s), nil
}

// DecodeAll decodes a packed sequence of records. An empty buffer yields an
// empty slice.
func DecodeAll(buf []byte) ([]TLV, error) {
	var out []TLV
	it := NewIterator(buf)
	for {
		rec, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, rec)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeAll concatenates the encodings of recs.
func EncodeAll(recs ...TLV) ([]byte, error) {
	var out []byte
	for _, r := range recs {
		b, err := r.Bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// Iterator walks a packed sequence of records.
type Iterator struct {
	rest []byte
	err  error
}

// NewIterator returns an iterator over buf.
func NewIterator(buf []byte) *Iterator {
	return &Iterator{rest: buf}
}

// Next returns the next record. It returns false when the buffer is exhausted
// or a malformed record was encountered; check Err to distinguish.
func (it *Iterator) Next() (TLV, bool) {
	if it.err != nil || len(it.rest) == 0 {
		return TLV{}, false
	}
	rec, rest, err := Decode(it.rest)
	if err != nil {
		it.err = err
		return TLV{}, false
	}
	it.rest = rest
	return rec, true
}

// Err returns the first decoding error, if any.
func (it *Iterator) Err() error {
	return it.err
}

// ReadFrom reads exactly one record from r. A clean end of stream before any
// byte of the record is returned as io.EOF; a partial record yields
// ErrMalformedRecord.
func ReadFrom(r io.Reader) (TLV, error) {
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return TLV{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return TLV{}, fmt.Errorf("%w: truncated header", ErrMalformedRecord)
		}
		return TLV{}, err
	}

	length := int(hdr[1])<<8 | int(hdr[2])
	value := make([]byte, length)
	if _, err := io.ReadFull(r, value); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return TLV{}, fmt.Errorf("%w: truncated value of type 0x%02x", ErrMalformedRecord, hdr[0])
		}
		return TLV{}, err
	}
	return TLV{Type: hdr[0], Value: value}, nil
}
