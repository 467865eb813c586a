package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rahulverma/medibill-gateway/internal/counters"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	"github.com/rahulverma/medibill-gateway/pkg/logger"
	"github.com/rahulverma/medibill-gateway/pkg/metrics"
	"github.com/rahulverma/medibill-gateway/pkg/pharmacy"
)

// fallbackCustomerName goes on the sale payload when the operator left the
// name blank.
const fallbackCustomerName = "Unknown"

type saleClient interface {
	CreateSale(ctx context.Context, token string, sale pharmacy.CreateSaleRequest) (*pharmacy.SaleConfirmation, error)
}

type counterStore interface {
	BeginSubmit(id int) (counters.Snapshot, error)
	FinishSubmit(id int, success bool) (counters.Snapshot, error)
}

// Service assembles and submits the final bill for a counter. A submission
// freezes the counter for its duration; success resets the cart and failure
// leaves it exactly as composed so the operator can correct and retry.
type Service struct {
	store   counterStore
	client  saleClient
	metrics *metrics.ServiceMetrics
	logger  *logger.Logger
}

// NewService builds the billing service.
func NewService(store counterStore, client saleClient, serviceMetrics *metrics.ServiceMetrics, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("counter store required")
	}
	if client == nil {
		return nil, errors.New("sale client required")
	}
	return &Service{
		store:   store,
		client:  client,
		metrics: serviceMetrics,
		logger:  logg,
	}, nil
}

// Result is the outcome of an accepted submission.
type Result struct {
	Confirmation *pharmacy.SaleConfirmation
	Total        decimal.Decimal
	Counter      counters.Snapshot
}

// Submit validates the counter's cart, posts the bill, and settles the
// counter's phase. Validation rejects, in order, an empty bill and a missing
// contact number; both happen before any network call.
func (s *Service) Submit(ctx context.Context, token string, counterID int) (*Result, error) {
	frozen, err := s.store.BeginSubmit(counterID)
	if err != nil {
		return nil, err
	}

	if err := validateForSubmission(frozen); err != nil {
		if _, finishErr := s.store.FinishSubmit(counterID, false); finishErr != nil {
			s.logError(ctx, counterID, finishErr)
		}
		return nil, err
	}

	payload := buildPayload(frozen)

	started := time.Now()
	confirmation, err := s.client.CreateSale(ctx, token, payload)
	s.metrics.ObserveUpstream("create_sale", err != nil, time.Since(started))

	if err != nil {
		s.metrics.IncBillFailure(frozen.PaymentMethod.String())
		if _, finishErr := s.store.FinishSubmit(counterID, false); finishErr != nil {
			s.logError(ctx, counterID, finishErr)
		}
		return nil, err
	}

	reset, err := s.store.FinishSubmit(counterID, true)
	if err != nil {
		s.logError(ctx, counterID, err)
		reset = frozen
	}
	s.metrics.IncBillSuccess(frozen.PaymentMethod.String())

	if s.logger != nil {
		s.logger.Info(s.logger.WithCounterID(ctx, counterID), "bill submitted")
	}

	return &Result{
		Confirmation: confirmation,
		Total:        frozen.Total,
		Counter:      reset,
	}, nil
}

func validateForSubmission(snap counters.Snapshot) error {
	if len(snap.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot submit an empty bill")
	}
	if strings.TrimSpace(snap.Customer.ContactNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer contact number is required")
	}
	return nil
}

func buildPayload(snap counters.Snapshot) pharmacy.CreateSaleRequest {
	name := strings.TrimSpace(snap.Customer.Name)
	if name == "" {
		name = fallbackCustomerName
	}

	lines := make([]pharmacy.SaleLine, 0, len(snap.Items))
	for _, item := range snap.Items {
		lines = append(lines, pharmacy.SaleLine{
			MedicineID: item.MedicineID,
			Quantity:   item.Quantity,
			Rate:       item.UnitSellingPrice.InexactFloat64(),
		})
	}

	return pharmacy.CreateSaleRequest{
		CustomerName:  name,
		ContactNumber: strings.TrimSpace(snap.Customer.ContactNumber),
		PaymentMethod: snap.PaymentMethod.Label(),
		Medicines:     lines,
	}
}

func (s *Service) logError(ctx context.Context, counterID int, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error(s.logger.WithCounterID(ctx, counterID), "settle counter phase", err)
}
