package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espressif/openthread/pkg/log"
	"github.com/espressif/openthread/pkg/tcat"
)

func writeCapture(t *testing.T) (string, time.Time) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.tlog")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	success := uint8(tcat.StatusSuccess)

	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)
	events := []log.Event{
		{
			Timestamp:    base,
			ConnectionID: "0123456789abcdef",
			Layer:        log.LayerTransport,
			Category:     log.CategoryState,
			RemoteAddr:   "192.0.2.7:12345",
			StateChange:  &log.StateChangeEvent{Entity: log.StateEntityConnection, NewState: "CONNECTED"},
		},
		{
			Timestamp:    base.Add(time.Second),
			ConnectionID: "0123456789abcdef",
			Direction:    log.DirectionOut,
			Layer:        log.LayerTransport,
			Category:     log.CategoryMessage,
			Frame:        &log.FrameEvent{Size: 4, Data: []byte{0x0a, 0x00, 0x01, 0x55}},
		},
		{
			Timestamp:    base.Add(time.Second),
			ConnectionID: "0123456789abcdef",
			Direction:    log.DirectionOut,
			Layer:        log.LayerTLV,
			Category:     log.CategoryMessage,
			Record:       &log.RecordEvent{Type: uint8(tcat.Ping), Length: 1},
		},
		{
			Timestamp:    base.Add(2 * time.Second),
			ConnectionID: "0123456789abcdef",
			Direction:    log.DirectionIn,
			Layer:        log.LayerTLV,
			Category:     log.CategoryMessage,
			Record:       &log.RecordEvent{Type: uint8(tcat.ResponseWithStatus), Length: 1, Status: &success},
		},
		{
			Timestamp:    base.Add(3 * time.Second),
			ConnectionID: "0123456789abcdef",
			Layer:        log.LayerTransport,
			Category:     log.CategoryError,
			Error:        &log.ErrorEventData{Layer: log.LayerTransport, Message: "broken pipe", Context: "send with response"},
		},
	}
	for _, e := range events {
		fl.Log(e)
	}
	require.NoError(t, fl.Close())
	return path, base
}

func TestRunView(t *testing.T) {
	path, _ := writeCapture(t)

	var out bytes.Buffer
	require.NoError(t, RunView(path, log.Filter{}, &out))
	s := out.String()
	assert.Contains(t, s, "[conn:01234567] IN  TRANSPORT State")
	assert.Contains(t, s, "-> CONNECTED")
	assert.Contains(t, s, "Remote: 192.0.2.7:12345")
	assert.Contains(t, s, "Data: 0a000155")
	assert.Contains(t, s, "OUT TLV PING")
	assert.Contains(t, s, "Status: success (0)")
	assert.Contains(t, s, "Message: broken pipe")

	out.Reset()
	layer := log.LayerTLV
	require.NoError(t, RunView(path, log.Filter{Layer: &layer}, &out))
	assert.Equal(t, 2, strings.Count(out.String(), "[conn:"))
}

func TestFilterOptionsBuild(t *testing.T) {
	f, err := FilterOptions{Layer: "TLV", Direction: "in", Category: "message", Type: "ping"}.Build()
	require.NoError(t, err)
	assert.Equal(t, log.LayerTLV, *f.Layer)
	assert.Equal(t, log.DirectionIn, *f.Direction)
	assert.Equal(t, log.CategoryMessage, *f.Category)
	assert.Equal(t, uint8(tcat.Ping), *f.TLVType)

	f, err = FilterOptions{Type: "0x61", TimeStart: "2026-03-01T12:00:00Z"}.Build()
	require.NoError(t, err)
	assert.Equal(t, uint8(tcat.GetApplicationLayers), *f.TLVType)
	assert.NotNil(t, f.TimeStart)

	for _, bad := range []FilterOptions{
		{Layer: "wire"},
		{Direction: "sideways"},
		{Category: "control"},
		{Type: "NOT_A_TYPE"},
		{TimeEnd: "yesterday"},
	} {
		_, err := bad.Build()
		assert.Error(t, err, "%+v", bad)
	}
}

func TestRunFilter(t *testing.T) {
	path, _ := writeCapture(t)
	output := filepath.Join(t.TempDir(), "filtered.tlog")

	count, err := RunFilter(path, output, FilterOptions{Type: "RESPONSE_W_STATUS"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stats, err := Collect(output)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEvents)
	assert.Equal(t, 1, stats.StatusCounts[tcat.StatusSuccess])
}

func TestExport(t *testing.T) {
	path, _ := writeCapture(t)

	reader, err := log.NewReader(path)
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, export(reader, "jsonl", &out))
	reader.Close()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "0123456789abcdef", first["ConnectionID"])

	reader, err = log.NewReader(path)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, export(reader, "csv", &out))
	reader.Close()
	assert.Contains(t, out.String(), "timestamp,connection_id,direction,layer,category,role,type,length")
	assert.Contains(t, out.String(), "PING,1")
	assert.Contains(t, out.String(), "frame,4")

	reader, err = log.NewReader(path)
	require.NoError(t, err)
	defer reader.Close()
	assert.Error(t, export(reader, "xml", &out))
}

func TestRunStats(t *testing.T) {
	path, base := writeCapture(t)

	stats, err := Collect(path)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalEvents)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 2, stats.EventsByLayer[log.LayerTLV])
	assert.Equal(t, 1, stats.RecordsByType[uint8(tcat.Ping)])
	assert.True(t, stats.TimeRange.Start.Equal(base))
	require.Len(t, stats.Connections, 1)
	assert.Equal(t, "192.0.2.7:12345", stats.Connections["0123456789abcdef"].RemoteAddr)

	var out bytes.Buffer
	require.NoError(t, RunStats(path, &out))
	s := out.String()
	assert.Contains(t, s, "Total Events: 5")
	assert.Contains(t, s, "Duration:   3s")
	assert.Contains(t, s, "PING:")
	assert.Contains(t, s, "success:")
	assert.Contains(t, s, "Errors: 1")
}
