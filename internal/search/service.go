package search

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rahulverma/medibill-gateway/pkg/config"
	"github.com/rahulverma/medibill-gateway/pkg/debounce"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	"github.com/rahulverma/medibill-gateway/pkg/enums"
	"github.com/rahulverma/medibill-gateway/pkg/metrics"
	"github.com/rahulverma/medibill-gateway/pkg/pharmacy"
)

type upstreamClient interface {
	Recommendations(ctx context.Context, token, query string) ([]pharmacy.CandidateSummary, error)
	MedicineInfo(ctx context.Context, token, medicineID string) (*pharmacy.MedicineInfo, error)
}

// Service owns the medicine picker flow: debounced suggestion lookups keyed by
// operator+counter, and the authoritative detail fetch that gates adding an
// item to a cart. Rapid repeat queries for the same key collapse into one
// upstream call, and a response for a superseded query is dropped rather than
// returned out of order.
type Service struct {
	client  upstreamClient
	group   *debounce.Group[[]pharmacy.CandidateSummary]
	max     int
	metrics *metrics.ServiceMetrics

	mu     sync.Mutex
	states map[string]enums.PickerState
}

// NewService builds the search service.
func NewService(client upstreamClient, cfg config.SearchConfig, serviceMetrics *metrics.ServiceMetrics) (*Service, error) {
	if client == nil {
		return nil, errors.New("upstream client required")
	}
	max := cfg.MaxSuggestions
	if max <= 0 {
		max = 10
	}
	return &Service{
		client:  client,
		group:   debounce.NewGroup[[]pharmacy.CandidateSummary](cfg.DebounceDelay),
		max:     max,
		metrics: serviceMetrics,
		states:  make(map[string]enums.PickerState),
	}, nil
}

// Suggestions resolves candidate medicines for partial input. An empty query
// clears the picker without touching the network. A call superseded by newer
// input for the same key returns a conflict so the caller can discard it.
func (s *Service) Suggestions(ctx context.Context, token, key, query string) ([]pharmacy.CandidateSummary, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		s.group.Forget(key)
		s.setState(key, enums.PickerStateIdle)
		return []pharmacy.CandidateSummary{}, nil
	}

	s.setState(key, enums.PickerStateSearching)

	results, err := s.group.Do(ctx, key, func(callCtx context.Context) ([]pharmacy.CandidateSummary, error) {
		return s.client.Recommendations(callCtx, token, trimmed)
	})
	if err != nil {
		if errors.Is(err, debounce.ErrSuperseded) {
			s.metrics.IncSearchSuperseded()
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "search superseded by newer input")
		}
		// A failed search leaves the suggestion list empty; the picker stays
		// usable for the next keystroke.
		s.setState(key, enums.PickerStateError)
		return nil, err
	}

	s.setState(key, enums.PickerStateIdle)
	if len(results) > s.max {
		results = results[:s.max]
	}
	return results, nil
}

// Detail fetches the authoritative record for a selected candidate. On
// failure the selection is aborted: the picker state drops back to error and
// no partially-populated item survives.
func (s *Service) Detail(ctx context.Context, token, key, medicineID string) (*pharmacy.MedicineInfo, error) {
	s.setState(key, enums.PickerStateDetailLoading)

	info, err := s.client.MedicineInfo(ctx, token, medicineID)
	if err != nil {
		s.setState(key, enums.PickerStateError)
		return nil, err
	}

	s.setState(key, enums.PickerStateReady)
	return info, nil
}

// State reports the picker phase for a key. Unknown keys are idle.
func (s *Service) State(key string) enums.PickerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[key]; ok {
		return state
	}
	return enums.PickerStateIdle
}

// Reset drops the key's pending search and returns the picker to idle.
func (s *Service) Reset(key string) {
	s.group.Forget(key)
	s.setState(key, enums.PickerStateIdle)
}

func (s *Service) setState(key string, state enums.PickerState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = state
}
