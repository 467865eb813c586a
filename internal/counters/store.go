package counters

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rahulverma/medibill-gateway/pkg/config"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	"github.com/rahulverma/medibill-gateway/pkg/enums"
)

// Store owns the cart state of the pharmacy's fixed counter set. Counters are
// created once at startup with empty carts and never destroyed; each one is an
// independent concurrency domain, so a submission in flight on one counter
// never blocks edits on another. The store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	counters map[int]*counterState
	ids      []int
	active   int
}

// NewStore builds the counter set 1..cfg.Count with empty carts.
func NewStore(cfg config.CountersConfig) (*Store, error) {
	if cfg.Count < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counter count must be at least 1")
	}
	counters := make(map[int]*counterState, cfg.Count)
	ids := make([]int, 0, cfg.Count)
	for id := 1; id <= cfg.Count; id++ {
		counters[id] = newCounterState()
		ids = append(ids, id)
	}
	return &Store{
		counters: counters,
		ids:      ids,
		active:   1,
	}, nil
}

// IDs returns the fixed counter identifiers in display order.
func (s *Store) IDs() []int {
	ids := make([]int, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// Active returns the currently selected counter id.
func (s *Store) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Select switches the active counter pointer. It has no side effects on any
// counter's cart.
func (s *Store) Select(id int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.active = id
	return state.snapshot(id), nil
}

// Snapshot returns a copy of one counter's cart.
func (s *Store) Snapshot(id int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return state.snapshot(id), nil
}

// Snapshots returns copies of every counter's cart in display order.
func (s *Store) Snapshots() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.counters[id].snapshot(id))
	}
	return out
}

// UpdateCustomer patches the counter's customer fields. Values are stored as
// given; contact number format is checked at submission, not here.
func (s *Store) UpdateCustomer(id int, patch CustomerPatch) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.mutable(id)
	if err != nil {
		return Snapshot{}, err
	}
	if patch.Name != nil {
		state.customer.Name = *patch.Name
	}
	if patch.ContactNumber != nil {
		state.customer.ContactNumber = *patch.ContactNumber
	}
	return state.snapshot(id), nil
}

// SetPaymentMethod overwrites the counter's payment method.
func (s *Store) SetPaymentMethod(id int, method enums.PaymentMethod) (Snapshot, error) {
	if !method.IsValid() {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.mutable(id)
	if err != nil {
		return Snapshot{}, err
	}
	state.paymentMethod = method
	return state.snapshot(id), nil
}

// AddLine appends a confirmed line item to the counter's cart. Order is
// insertion order and is preserved. A missing local id is generated here.
func (s *Store) AddLine(id int, item LineItem) (Snapshot, error) {
	if item.MedicineID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "line item medicine id is required")
	}
	if item.Quantity <= 0 {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive")
	}
	if item.UnitSellingPrice.IsNegative() {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "line item price cannot be negative")
	}
	if item.LocalID == "" {
		item.LocalID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.mutable(id)
	if err != nil {
		return Snapshot{}, err
	}
	state.items = append(state.items, item)
	return state.snapshot(id), nil
}

// RemoveLine filters the counter's items by local id. Removing an absent id is
// a no-op, not an error.
func (s *Store) RemoveLine(id int, localID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.mutable(id)
	if err != nil {
		return Snapshot{}, err
	}
	kept := state.items[:0]
	for _, item := range state.items {
		if item.LocalID != localID {
			kept = append(kept, item)
		}
	}
	state.items = kept
	return state.snapshot(id), nil
}

// Clear replaces the counter's cart with a fresh empty state. A counter with
// no items and no contact number reports cleared=false so the caller can tell
// the user nothing happened.
func (s *Store) Clear(id int) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.mutable(id)
	if err != nil {
		return Snapshot{}, false, err
	}
	if len(state.items) == 0 && state.customer.ContactNumber == "" {
		return state.snapshot(id), false, nil
	}
	fresh := newCounterState()
	s.counters[id] = fresh
	return fresh.snapshot(id), true, nil
}

// BeginSubmit moves the counter into the submitting phase, rejecting the call
// if a submission is already in flight. The cart is returned frozen for
// payload assembly.
func (s *Store) BeginSubmit(id int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	if state.phase == enums.CounterPhaseSubmitting {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict, "a submission is already in flight for this counter")
	}
	state.phase = enums.CounterPhaseSubmitting
	return state.snapshot(id), nil
}

// FinishSubmit ends the submitting phase. On success the counter is reset to
// a fresh empty cart; on failure the cart is left exactly as it was so the
// operator can correct and retry.
func (s *Store) FinishSubmit(id int, success bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	if state.phase != enums.CounterPhaseSubmitting {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict, "counter has no submission in flight")
	}
	if success {
		fresh := newCounterState()
		s.counters[id] = fresh
		return fresh.snapshot(id), nil
	}
	state.phase = enums.CounterPhaseBuilding
	return state.snapshot(id), nil
}

func (s *Store) lookup(id int) (*counterState, error) {
	state, ok := s.counters[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "counter not found")
	}
	return state, nil
}

// mutable returns the counter only if it will accept edits; a counter in the
// submitting phase rejects every mutation until the submission resolves.
func (s *Store) mutable(id int) (*counterState, error) {
	state, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if state.phase == enums.CounterPhaseSubmitting {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "counter is submitting; edits are locked")
	}
	return state, nil
}
