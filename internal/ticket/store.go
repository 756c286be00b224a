package ticket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ppiankov/tariffwatch/internal/kvstore"
	"github.com/ppiankov/tariffwatch/internal/model"
)

// CommitFunc runs under the ticket lock after a change has been persisted.
// Returning an error rolls the change back: a created ticket is deleted and a
// decided ticket is restored to its prior bytes.
type CommitFunc func(t Ticket) error

// Store persists review tickets in a key-value store keyed by ticket id.
type Store struct {
	kv  kvstore.Store
	now func() time.Time

	createMu sync.Mutex // serializes id allocation
	locks    sync.Map   // ticket id -> *sync.Mutex
}

// NewStore creates a Store over kv.
func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Close releases the underlying key-value store.
func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create opens a ticket for a classification that requires review.
// The ticket id is written into the response snapshot before it is stored.
// If the id for the current second is taken the timestamp is advanced until free.
// A failed write skips commit; a failed commit deletes the ticket again.
func (s *Store) Create(product model.ProductSpecs, response model.ClassificationResult, commit CommitFunc) (Ticket, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	now := s.now().UTC()
	fp := Fingerprint(product)

	unix := now.Unix()
	var id string
	for {
		id = MakeID(unix, fp)
		_, err := s.kv.Get(id)
		if errors.Is(err, kvstore.ErrNotFound) {
			break
		}
		if err != nil {
			return Ticket{}, fmt.Errorf("%w: check ticket id %s: %v", model.ErrStorage, id, err)
		}
		unix++
	}

	unlock := s.lock(id)
	defer unlock()

	response.ReviewTicketID = &id
	t := Ticket{
		ID:            id,
		Status:        StatusOpen,
		CreatedAt:     now.Format(TimestampFormat),
		Request:       product,
		Response:      response,
		ReviewReasons: response.ReviewReasons,
	}
	if t.ReviewReasons == nil {
		t.ReviewReasons = []string{}
	}

	if err := s.write(t); err != nil {
		return Ticket{}, err
	}
	if commit != nil {
		if err := commit(t); err != nil {
			if derr := s.kv.Delete(id); derr != nil && !errors.Is(derr, kvstore.ErrNotFound) {
				return Ticket{}, fmt.Errorf("%w; %w: roll back ticket %s: %v", err, model.ErrStorage, id, derr)
			}
			return Ticket{}, err
		}
	}
	return t, nil
}

// Get loads a ticket. Ids that are unknown or could not name a ticket
// (separators, traversal, invalid characters) yield model.ErrNotFound.
func (s *Store) Get(id string) (Ticket, error) {
	if err := kvstore.ValidateKey(id); err != nil {
		return Ticket{}, fmt.Errorf("%w: review ticket %q", model.ErrNotFound, id)
	}
	return s.read(id)
}

// Decide records a verdict on an open ticket. The check-and-set is atomic per
// ticket id: of several concurrent deciders exactly one succeeds and the rest
// receive model.ErrConflict. The decided ticket is stored before commit runs;
// if commit fails the prior bytes are put back and the ticket stays open.
func (s *Store) Decide(id string, d Decision, commit CommitFunc) (Ticket, error) {
	if err := kvstore.ValidateKey(id); err != nil {
		return Ticket{}, fmt.Errorf("%w: review ticket %q", model.ErrNotFound, id)
	}

	unlock := s.lock(id)
	defer unlock()

	t, prior, err := s.readRaw(id)
	if err != nil {
		return Ticket{}, err
	}
	if err := d.Validate(); err != nil {
		return Ticket{}, err
	}
	if t.Status != StatusOpen {
		return Ticket{}, fmt.Errorf("%w: review %s already finalized (%s)", model.ErrConflict, id, t.Status)
	}

	decidedAt := s.now().UTC().Format(TimestampFormat)
	t.Status = d.Decision
	t.Reviewer = d.Reviewer
	t.DecisionNotes = d.Notes
	t.DecidedAt = &decidedAt

	if err := s.write(t); err != nil {
		return Ticket{}, err
	}
	if commit != nil {
		if err := commit(t); err != nil {
			if rerr := s.kv.Put(id, prior); rerr != nil {
				return Ticket{}, fmt.Errorf("%w; %w: restore ticket %s: %v", err, model.ErrStorage, id, rerr)
			}
			return Ticket{}, err
		}
	}
	return t, nil
}

// List returns ticket summaries, most recently modified first.
// Entries that fail to decode are skipped.
func (s *Store) List() ([]Summary, error) {
	items, err := s.kv.List()
	if err != nil {
		return nil, fmt.Errorf("%w: list tickets: %v", model.ErrStorage, err)
	}

	summaries := make([]Summary, 0, len(items))
	for _, item := range items {
		t, err := s.read(item.Key)
		if err != nil {
			continue
		}
		summaries = append(summaries, t.summary())
	}
	return summaries, nil
}

// Counts aggregates tickets by status.
func (s *Store) Counts() (Counts, error) {
	summaries, err := s.List()
	if err != nil {
		return Counts{}, err
	}

	var c Counts
	for _, sum := range summaries {
		switch sum.Status {
		case StatusOpen:
			c.Open++
		case StatusApproved:
			c.Approved++
		case StatusRejected:
			c.Rejected++
		}
		c.Total++
	}
	return c, nil
}

// Report returns the classification report view of a ticket.
func (s *Store) Report(id string) (Report, error) {
	t, err := s.Get(id)
	if err != nil {
		return Report{}, err
	}
	return t.report(), nil
}

func (s *Store) read(id string) (Ticket, error) {
	t, _, err := s.readRaw(id)
	return t, err
}

// readRaw returns the decoded ticket together with its stored bytes.
func (s *Store) readRaw(id string) (Ticket, []byte, error) {
	data, err := s.kv.Get(id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) || errors.Is(err, kvstore.ErrInvalidKey) {
			return Ticket{}, nil, fmt.Errorf("%w: review ticket %q", model.ErrNotFound, id)
		}
		return Ticket{}, nil, fmt.Errorf("%w: read ticket %s: %v", model.ErrStorage, id, err)
	}

	var t Ticket
	if err := json.Unmarshal(data, &t); err != nil {
		return Ticket{}, nil, fmt.Errorf("%w: decode ticket %s: %v", model.ErrStorage, id, err)
	}
	return t, data, nil
}

func (s *Store) write(t Ticket) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode ticket %s: %v", model.ErrStorage, t.ID, err)
	}
	if err := s.kv.Put(t.ID, data); err != nil {
		return fmt.Errorf("%w: write ticket %s: %v", model.ErrStorage, t.ID, err)
	}
	return nil
}
