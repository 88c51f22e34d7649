package output

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const rawLogMagic = "KV2RAW01"

// maxRecordSize bounds a single record; a full color frame plus framing fits easily.
const maxRecordSize = 64 << 20

var ErrBadMagic = errors.New("not a kinect raw log")

// RawLogWriter appends timestamped payloads to a raw log file.
// Each record is [8B unix nanos LE][4B length LE][payload].
type RawLogWriter struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	path string
	now  func() time.Time
}

func NewRawLogWriter(outputDir string, prefix string) (*RawLogWriter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("%s_%s.bin", timestamp, prefix))
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriterSize(f, 1024*1024)
	if _, err := w.WriteString(rawLogMagic); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &RawLogWriter{
		f:    f,
		w:    w,
		path: filename,
		now:  time.Now,
	}, nil
}

// Path of the file being written.
func (r *RawLogWriter) Path() string {
	return r.path
}

func (r *RawLogWriter) Record(payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return fmt.Errorf("raw log writer is closed")
	}
	if len(payload) > maxRecordSize {
		return fmt.Errorf("record of %d bytes exceeds limit %d", len(payload), maxRecordSize)
	}
	var header [12]byte
	binary.LittleEndian.PutUint64(header[:8], uint64(r.now().UnixNano()))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(payload)))
	if _, err := r.w.Write(header[:]); err != nil {
		return err
	}
	if _, err := r.w.Write(payload); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *RawLogWriter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return nil
	}
	if err := r.w.Flush(); err != nil {
		_ = r.f.Close()
		r.w = nil
		return err
	}
	err := r.f.Close()
	r.w = nil
	return err
}

// RawRecord is one entry read back from a raw log.
type RawRecord struct {
	Time    time.Time
	Payload []byte
}

// RawLogReader iterates the records of a raw log.
type RawLogReader struct {
	r io.Reader
}

// NewRawLogReader checks the magic header and positions r at the first record.
func NewRawLogReader(r io.Reader) (*RawLogReader, error) {
	br := bufio.NewReaderSize(r, 1024*1024)
	magic := make([]byte, len(rawLogMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != rawLogMagic {
		return nil, ErrBadMagic
	}
	return &RawLogReader{r: br}, nil
}

// Next returns the next record, or io.EOF after the last complete one.
// A record cut short returns io.ErrUnexpectedEOF.
func (r *RawLogReader) Next() (RawRecord, error) {
	var header [12]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		return RawRecord{}, err
	}
	ts := int64(binary.LittleEndian.Uint64(header[:8]))
	size := binary.LittleEndian.Uint32(header[8:12])
	if size > maxRecordSize {
		return RawRecord{}, fmt.Errorf("record length %d exceeds limit %d", size, maxRecordSize)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return RawRecord{}, err
	}
	return RawRecord{Time: time.Unix(0, ts), Payload: payload}, nil
}
