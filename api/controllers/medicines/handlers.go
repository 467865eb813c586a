package medicines

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rahulverma/medibill-gateway/api/middleware"
	"github.com/rahulverma/medibill-gateway/api/responses"
	"github.com/rahulverma/medibill-gateway/api/validators"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	"github.com/rahulverma/medibill-gateway/pkg/enums"
	"github.com/rahulverma/medibill-gateway/pkg/logger"
	"github.com/rahulverma/medibill-gateway/pkg/pharmacy"
)

type searchService interface {
	Suggestions(ctx context.Context, token, key, query string) ([]pharmacy.CandidateSummary, error)
	Detail(ctx context.Context, token, key, medicineID string) (*pharmacy.MedicineInfo, error)
	State(key string) enums.PickerState
}

type sessionCloser interface {
	ClearIfUnauthorized(ctx context.Context, sessionID string, err error) error
}

// Handlers carries the medicine lookup routes' dependencies.
type Handlers struct {
	search   searchService
	sessions sessionCloser
	maxCount int
	logger   *logger.Logger
}

// NewHandlers wires the medicine controller. maxCounters bounds the counter
// query parameter.
func NewHandlers(search searchService, sessions sessionCloser, maxCounters int, logg *logger.Logger) *Handlers {
	return &Handlers{
		search:   search,
		sessions: sessions,
		maxCount: maxCounters,
		logger:   logg,
	}
}

// Search resolves suggestion candidates for the partial query typed at a
// counter's picker. Rapid repeat calls for the same counter collapse into one
// upstream request; superseded calls return a conflict the client discards.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counter, err := validators.ParseQueryInt(r, "counter", 1, 1, h.maxCount)
	if err != nil {
		responses.WriteError(ctx, h.logger, w, err)
		return
	}

	token := middleware.UpstreamTokenFromContext(ctx)
	key := pickerKey(ctx, counter)
	query := r.URL.Query().Get("query")

	suggestions, err := h.search.Suggestions(ctx, token, key, query)
	if err != nil {
		err = h.sessions.ClearIfUnauthorized(ctx, middleware.SessionIDFromContext(ctx), err)
		responses.WriteError(ctx, h.logger, w, err)
		return
	}

	responses.WriteSuccess(w, searchView{
		Suggestions: newSuggestionViews(suggestions),
		State:       h.search.State(key).String(),
	})
}

// Detail fetches the authoritative record for one medicine: live stock,
// pricing, and expiry. The client calls this when a suggestion is picked.
func (h *Handlers) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	medicineID := chi.URLParam(r, "medicineId")
	if medicineID == "" {
		responses.WriteError(ctx, h.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "medicine id is required"))
		return
	}

	counter, err := validators.ParseQueryInt(r, "counter", 1, 1, h.maxCount)
	if err != nil {
		responses.WriteError(ctx, h.logger, w, err)
		return
	}

	token := middleware.UpstreamTokenFromContext(ctx)
	key := pickerKey(ctx, counter)

	info, err := h.search.Detail(ctx, token, key, medicineID)
	if err != nil {
		err = h.sessions.ClearIfUnauthorized(ctx, middleware.SessionIDFromContext(ctx), err)
		responses.WriteError(ctx, h.logger, w, err)
		return
	}

	responses.WriteSuccess(w, newDetailView(info))
}

func pickerKey(ctx context.Context, counterID int) string {
	return middleware.OperatorIDFromContext(ctx) + ":" + strconv.Itoa(counterID)
}
