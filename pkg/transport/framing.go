package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/espressif/openthread/pkg/log"
	"github.com/espressif/openthread/pkg/tcat"
	"github.com/espressif/openthread/pkg/tlv"
)

// MaxLogFrameDataSize is the maximum record data included in capture events.
// Larger records are truncated.
const MaxLogFrameDataSize = 4096

// ErrMessageEmpty indicates an attempt to send zero bytes.
var ErrMessageEmpty = errors.New("message is empty")

// RecordWriter writes TLV records to an underlying writer.
type RecordWriter struct {
	w  io.Writer
	mu sync.Mutex

	// Capture support (optional)
	logger log.Logger
	connID string
	role   log.Role
}

// NewRecordWriter creates a new record writer.
func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{w: w}
}

// SetLogger configures capture for this writer.
// Pass nil to disable capture.
func (rw *RecordWriter) SetLogger(logger log.Logger, connID string, role log.Role) {
	rw.logger = logger
	rw.connID = connID
	rw.role = role
}

// WriteRecord writes already encoded TLV bytes in a single write.
// Thread-safe: can be called from multiple goroutines.
func (rw *RecordWriter) WriteRecord(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}

	rw.mu.Lock()
	defer rw.mu.Unlock()

	if _, err := rw.w.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	if rw.logger != nil {
		logRecord(rw.logger, rw.connID, rw.role, data, log.DirectionOut)
	}
	return nil
}

// RecordReader reads TLV records from an underlying reader.
type RecordReader struct {
	r io.Reader

	// Capture support (optional)
	logger log.Logger
	connID string
	role   log.Role
}

// NewRecordReader creates a new record reader.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: r}
}

// SetLogger configures capture for this reader.
// Pass nil to disable capture.
func (rr *RecordReader) SetLogger(logger log.Logger, connID string, role log.Role) {
	rr.logger = logger
	rr.connID = connID
	rr.role = role
}

// ReadRecord reads exactly one TLV record and returns it encoded, header
// included. It returns io.EOF if the stream ends before the first header
// byte.
func (rr *RecordReader) ReadRecord() ([]byte, error) {
	rec, err := tlv.ReadFrom(rr.r)
	if err != nil {
		return nil, err
	}
	data, err := rec.Bytes()
	if err != nil {
		return nil, err
	}

	if rr.logger != nil {
		logRecord(rr.logger, rr.connID, rr.role, data, log.DirectionIn)
	}
	return data, nil
}

// logRecord emits a transport frame event and, when the bytes decode, a TLV
// record event.
func logRecord(logger log.Logger, connID string, role log.Role, data []byte, direction log.Direction) {
	now := time.Now()

	frameData := data
	truncated := false
	if len(data) > MaxLogFrameDataSize {
		frameData = data[:MaxLogFrameDataSize]
		truncated = true
	}

	logger.Log(log.Event{
		Timestamp:    now,
		ConnectionID: connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		LocalRole:    role,
		Frame: &log.FrameEvent{
			Size:      len(data),
			Data:      frameData,
			Truncated: truncated,
		},
	})

	rec, _, err := tlv.Decode(data)
	if err != nil {
		return
	}
	re := &log.RecordEvent{
		Type:   rec.Type,
		Length: len(rec.Value),
	}
	if tcat.Type(rec.Type) == tcat.ResponseWithStatus && len(rec.Value) > 0 {
		status := rec.Value[0]
		re.Status = &status
	}
	logger.Log(log.Event{
		Timestamp:    now,
		ConnectionID: connID,
		Direction:    direction,
		Layer:        log.LayerTLV,
		Category:     log.CategoryMessage,
		LocalRole:    role,
		Record:       re,
	})
}
