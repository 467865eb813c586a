package search

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/rahulverma/medibill-gateway/internal/counters"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	"github.com/rahulverma/medibill-gateway/pkg/pharmacy"
)

// ConfirmInput carries the operator's quantity and price entry for a selected
// candidate.
type ConfirmInput struct {
	Quantity         int
	UnitSellingPrice decimal.Decimal
	ConfirmBelowCost bool
}

// BuildLineItem validates the operator's entry against the fetched medicine
// record and produces a cart line item. Quantity and price violations are hard
// rejections; pricing below the purchase price is a confirmable warning that
// succeeds only when ConfirmBelowCost is set.
func BuildLineItem(info *pharmacy.MedicineInfo, input ConfirmInput) (counters.LineItem, error) {
	if info == nil {
		return counters.LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "medicine detail is required")
	}

	var hard error
	if input.Quantity <= 0 {
		hard = multierr.Append(hard, fmt.Errorf("quantity must be a positive integer"))
	} else if input.Quantity > info.StockQuantity {
		hard = multierr.Append(hard, fmt.Errorf("quantity %d exceeds available stock %d", input.Quantity, info.StockQuantity))
	}
	if !input.UnitSellingPrice.IsPositive() {
		hard = multierr.Append(hard, fmt.Errorf("selling price must be a positive number"))
	}
	if hard != nil {
		messages := make([]string, 0)
		for _, err := range multierr.Errors(hard) {
			messages = append(messages, err.Error())
		}
		return counters.LineItem{}, pkgerrors.Wrap(pkgerrors.CodeValidation, hard, "line item rejected").
			WithDetails(map[string]any{"violations": messages})
	}

	purchasePrice := decimal.NewFromFloat(info.PurchasePrice)
	if input.UnitSellingPrice.LessThan(purchasePrice) && !input.ConfirmBelowCost {
		return counters.LineItem{}, pkgerrors.New(pkgerrors.CodeStateConflict, "selling price is below purchase price").
			WithDetails(map[string]any{
				"warning":        "below_purchase_price",
				"purchase_price": info.PurchasePrice,
			})
	}

	return counters.LineItem{
		MedicineID:        info.MedicineID,
		MedicineName:      info.MedicineName,
		BatchNo:           info.BatchNo,
		Quantity:          input.Quantity,
		UnitSellingPrice:  input.UnitSellingPrice,
		UnitMRP:           decimal.NewFromFloat(info.MRP),
		UnitPurchasePrice: purchasePrice,
	}, nil
}
