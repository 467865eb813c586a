package counters

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rahulverma/medibill-gateway/api/middleware"
	"github.com/rahulverma/medibill-gateway/api/responses"
	"github.com/rahulverma/medibill-gateway/api/validators"
	"github.com/rahulverma/medibill-gateway/internal/billing"
	countersvc "github.com/rahulverma/medibill-gateway/internal/counters"
	searchsvc "github.com/rahulverma/medibill-gateway/internal/search"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	"github.com/rahulverma/medibill-gateway/pkg/enums"
	"github.com/rahulverma/medibill-gateway/pkg/logger"
	"github.com/rahulverma/medibill-gateway/pkg/pharmacy"
)

type detailFetcher interface {
	Detail(ctx context.Context, token, key, medicineID string) (*pharmacy.MedicineInfo, error)
}

type billSubmitter interface {
	Submit(ctx context.Context, token string, counterID int) (*billing.Result, error)
}

type sessionCloser interface {
	ClearIfUnauthorized(ctx context.Context, sessionID string, err error) error
}

// Handlers carries the counter routes' dependencies.
type Handlers struct {
	store    *countersvc.Store
	picker   detailFetcher
	billing  billSubmitter
	sessions sessionCloser
	logger   *logger.Logger
}

// NewHandlers wires the counter controller.
func NewHandlers(store *countersvc.Store, picker detailFetcher, billingSvc billSubmitter, sessions sessionCloser, logg *logger.Logger) *Handlers {
	return &Handlers{
		store:    store,
		picker:   picker,
		billing:  billingSvc,
		sessions: sessions,
		logger:   logg,
	}
}

// List returns every counter's cart plus the active pointer.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	snaps := h.store.Snapshots()
	views := make([]counterView, 0, len(snaps))
	for _, snap := range snaps {
		views = append(views, newCounterView(snap))
	}
	responses.WriteSuccess(w, counterListView{
		Active:   h.store.Active(),
		Counters: views,
	})
}

// Get returns a single counter's cart.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := counterID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	snap, err := h.store.Snapshot(id)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	responses.WriteSuccess(w, newCounterView(snap))
}

// Select switches the active counter pointer.
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	id, err := counterID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	snap, err := h.store.Select(id)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	responses.WriteSuccess(w, newCounterView(snap))
}

// UpdateCustomer patches the counter's customer name and contact fields.
func (h *Handlers) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := counterID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}

	var payload updateCustomerRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	if payload.Name == nil && payload.ContactNumber == nil {
		responses.WriteError(r.Context(), h.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "no customer fields provided"))
		return
	}

	patch := countersvc.CustomerPatch{}
	if payload.Name != nil {
		name := validators.SanitizeString(*payload.Name, 64)
		patch.Name = &name
	}
	if payload.ContactNumber != nil {
		contact := validators.SanitizeString(*payload.ContactNumber, 20)
		patch.ContactNumber = &contact
	}

	snap, err := h.store.UpdateCustomer(id, patch)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	responses.WriteSuccess(w, newCounterView(snap))
}

// SetPaymentMethod overwrites the counter's payment method.
func (h *Handlers) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := counterID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}

	var payload setPaymentMethodRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
		return
	}

	snap, err := h.store.SetPaymentMethod(id, method)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	responses.WriteSuccess(w, newCounterView(snap))
}

// AddItem confirms a picked medicine into the counter's cart. The quantity
// and price are validated against a fresh authoritative detail fetch, so a
// stale stock figure can't slip into the bill.
func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := counterID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}

	var payload addItemRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}

	ctx := r.Context()
	token := middleware.UpstreamTokenFromContext(ctx)
	key := pickerKey(ctx, id)

	info, err := h.picker.Detail(ctx, token, key, payload.MedicineID)
	if err != nil {
		err = h.sessions.ClearIfUnauthorized(ctx, middleware.SessionIDFromContext(ctx), err)
		responses.WriteError(ctx, h.logger, w, err)
		return
	}

	item, err := searchsvc.BuildLineItem(info, searchsvc.ConfirmInput{
		Quantity:         payload.Quantity,
		UnitSellingPrice: payload.UnitSellingPrice,
		ConfirmBelowCost: payload.ConfirmBelowCost,
	})
	if err != nil {
		responses.WriteError(ctx, h.logger, w, err)
		return
	}

	snap, err := h.store.AddLine(id, item)
	if err != nil {
		responses.WriteError(ctx, h.logger, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, newCounterView(snap))
}

// RemoveItem deletes a line item by its local id. Removing an id that is no
// longer present succeeds with the unchanged cart.
func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := counterID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	itemID := chi.URLParam(r, "itemId")
	if itemID == "" {
		responses.WriteError(r.Context(), h.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "item id is required"))
		return
	}

	snap, err := h.store.RemoveLine(id, itemID)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	responses.WriteSuccess(w, newCounterView(snap))
}

// Clear resets the counter's cart. The operator must confirm; clearing an
// already-empty counter reports cleared=false.
func (h *Handlers) Clear(w http.ResponseWriter, r *http.Request) {
	id, err := counterID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}

	var payload clearRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	if !payload.Confirm {
		responses.WriteError(r.Context(), h.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "clearing a counter requires confirmation"))
		return
	}

	snap, cleared, err := h.store.Clear(id)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	responses.WriteSuccess(w, clearView{
		Cleared: cleared,
		Counter: newCounterView(snap),
	})
}

// Total returns the counter's running total.
func (h *Handlers) Total(w http.ResponseWriter, r *http.Request) {
	id, err := counterID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	snap, err := h.store.Snapshot(id)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}
	responses.WriteSuccess(w, totalView{
		CounterID: snap.CounterID,
		Total:     snap.Total.StringFixed(2),
	})
}

// Submit posts the counter's bill to the pharmacy backend.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := counterID(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logger, w, err)
		return
	}

	ctx := r.Context()
	token := middleware.UpstreamTokenFromContext(ctx)

	result, err := h.billing.Submit(ctx, token, id)
	if err != nil {
		err = h.sessions.ClearIfUnauthorized(ctx, middleware.SessionIDFromContext(ctx), err)
		responses.WriteError(ctx, h.logger, w, err)
		return
	}

	view := submissionView{
		Total:   result.Total.StringFixed(2),
		Counter: newCounterView(result.Counter),
	}
	if result.Confirmation != nil {
		view.SaleID = result.Confirmation.SaleID
		view.InvoiceNo = result.Confirmation.InvoiceNo
	}
	responses.WriteSuccess(w, view)
}

func counterID(r *http.Request) (int, error) {
	return validators.ParsePathInt(chi.URLParam(r, "id"), "id")
}

// pickerKey scopes picker state per operator and counter so two terminals
// never cancel each other's searches.
func pickerKey(ctx context.Context, counterID int) string {
	return middleware.OperatorIDFromContext(ctx) + ":" + strconv.Itoa(counterID)
}
