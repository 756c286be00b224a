package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// maxLineSize bounds a single audit line; classification payloads carry the
// full request and response.
const maxLineSize = 4 * 1024 * 1024

// VerifyResult holds the outcome of a hash chain verification.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Head      string `json:"head,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

// Verify reads a JSONL audit log and validates the hash chain.
// Each event's event_hash must match recomputation over its own content and
// each previous_hash must equal the predecessor's event_hash. Returns
// Valid=true if the chain is intact, or details about the first broken link.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	prevHash := ""

	for scanner.Scan() {
		lineNum++

		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			return VerifyResult{
				Error:     fmt.Sprintf("parse error: %v", err),
				ErrorLine: lineNum,
			}
		}

		if event.PreviousHash != prevHash {
			if lineNum == 1 {
				return VerifyResult{
					Error:     fmt.Sprintf("first entry previous_hash is %q, expected empty root", event.PreviousHash),
					ErrorLine: 1,
				}
			}
			return VerifyResult{
				Error:     fmt.Sprintf("chain broken: expected previous_hash %s, got %s", prevHash, event.PreviousHash),
				ErrorLine: lineNum,
			}
		}

		computed, err := event.ComputeHash()
		if err != nil {
			return VerifyResult{Error: err.Error(), ErrorLine: lineNum}
		}
		if computed != event.EventHash {
			return VerifyResult{
				Error:     fmt.Sprintf("hash mismatch: computed %s, stored %s", computed, event.EventHash),
				ErrorLine: lineNum,
			}
		}

		prevHash = event.EventHash
	}

	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}

	return VerifyResult{Valid: true, Lines: lineNum, Head: prevHash}
}

// ReadAll returns every event in the log, in order.
func ReadAll(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("parse audit line %d: %w", len(events)+1, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return events, nil
}

// Tail returns the last n events of the log.
func Tail(path string, n int) ([]Event, error) {
	events, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events, nil
}
