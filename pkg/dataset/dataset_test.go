package dataset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// channel 11, pan id 0xface, network name "OpenThread"
const sampleHex = "00030000" + "0b" + "0102face" + "030a4f70656e546872656164"

func TestFromHex(t *testing.T) {
	d, err := FromHex(sampleHex)
	require.NoError(t, err)

	recs := d.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "Channel", recs[0].Name())
	assert.Equal(t, []byte{0x00, 0x00, 0x0b}, recs[0].Value)
	assert.Equal(t, "PAN ID", recs[1].Name())
	assert.Equal(t, "OpenThread", string(recs[2].Value))
	assert.Equal(t, sampleHex, d.Hex())
}

func TestSetFromBytesRejectsTruncated(t *testing.T) {
	d, err := FromHex(sampleHex)
	require.NoError(t, err)

	err = d.SetFromBytes([]byte{0x03, 0x05, 'a'})
	assert.ErrorIs(t, err, ErrMalformedDataset)
	assert.Equal(t, sampleHex, d.Hex(), "dataset must be unchanged on error")
}

func TestExtendedLength(t *testing.T) {
	value := bytes.Repeat([]byte{0xAB}, 300)
	data := append([]byte{0x08, 0xFF, 0x01, 0x2C}, value...)

	d, err := New(data)
	require.NoError(t, err)
	recs := d.Records()
	require.Len(t, recs, 1)
	assert.Len(t, recs[0].Value, 300)
}

func TestFromHexInvalid(t *testing.T) {
	_, err := FromHex("zz")
	assert.ErrorIs(t, err, ErrMalformedDataset)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	var empty *Dataset
	empty.Print(&buf)
	assert.Equal(t, "Dataset is empty.\n", buf.String())
	assert.True(t, empty.Empty())

	buf.Reset()
	d, err := FromHex(sampleHex)
	require.NoError(t, err)
	d.Print(&buf)
	assert.Contains(t, buf.String(), "Network Name: 4f70656e546872656164")
	assert.Contains(t, buf.String(), "PAN ID: face")

	d.Clear()
	assert.True(t, d.Empty())
}
