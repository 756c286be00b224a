package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ppiankov/tariffwatch/internal/model"
)

// Log is an append-only JSONL audit log with SHA-256 hash chaining.
// Every Append reads the current tail of the file under the log mutex, so
// the chain stays linear even when callers race.
type Log struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// Open prepares an audit log at path, creating the file and its directory
// if needed. An existing file is kept as is.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}
	f.Close()

	return &Log{path: path, now: time.Now}, nil
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Append records a new event whose previous_hash links to the last stored
// event. The payload is marshalled to JSON once; the stored bytes are what
// the hash covers. Errors wrap model.ErrStorage and leave the file as it was.
func (l *Log) Append(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("%w: audit: marshal payload: %v", model.ErrStorage, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prevHash, err := l.tailHash()
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	event := Event{
		EventType:    eventType,
		CreatedAt:    l.now().UTC().Format(TimestampFormat),
		PreviousHash: prevHash,
		Payload:      raw,
	}
	event.EventHash, err = event.ComputeHash()
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	line, err := json.Marshal(event)
	if err != nil {
		return Event{}, fmt.Errorf("%w: audit: marshal event: %v", model.ErrStorage, err)
	}

	if err := l.writeLine(line); err != nil {
		return Event{}, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	return event, nil
}

// LastHash returns the event_hash of the newest stored event, or "".
func (l *Log) LastHash() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tailHash()
}

// Close is a no-op kept for symmetry with the other stores; the file is
// opened per append.
func (l *Log) Close() error {
	return nil
}

func (l *Log) tailHash() (string, error) {
	last, err := readLastLine(l.path)
	if err != nil {
		return "", fmt.Errorf("audit: read tail: %w", err)
	}
	if len(last) == 0 {
		return "", nil
	}
	var tail Event
	if err := json.Unmarshal(last, &tail); err != nil {
		return "", fmt.Errorf("audit: corrupt tail entry: %w", err)
	}
	if tail.EventHash == "" {
		return "", fmt.Errorf("audit: tail entry has no event_hash")
	}
	return tail.EventHash, nil
}

// writeLine appends line+"\n" and syncs. A failed write is truncated back
// so no partial line survives.
func (l *Log) writeLine(line []byte) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("audit: open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("audit: stat: %w", err)
	}
	size := info.Size()

	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Truncate(size)
		return fmt.Errorf("audit: write entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Truncate(size)
		return fmt.Errorf("audit: sync: %w", err)
	}
	return nil
}

const tailChunk = 4096

// readLastLine returns the last non-empty line of the file without reading
// the whole file. A missing file yields nil.
func readLastLine(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var buf []byte
	end := info.Size()
	for end > 0 {
		start := end - tailChunk
		if start < 0 {
			start = 0
		}
		chunk := make([]byte, end-start)
		if _, err := f.ReadAt(chunk, start); err != nil && err != io.EOF {
			return nil, err
		}
		buf = append(chunk, buf...)

		trimmed := bytes.TrimRight(buf, "\r\n")
		if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
			return trimmed[i+1:], nil
		}
		if start == 0 {
			return trimmed, nil
		}
		end = start
	}
	return nil, nil
}
