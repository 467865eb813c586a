package counters

import (
	"github.com/shopspring/decimal"

	"github.com/rahulverma/medibill-gateway/pkg/enums"
)

// Customer holds the bill's customer fields. Nothing is validated at write
// time; submission validates what it needs.
type Customer struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
}

// LineItem is one confirmed medicine entry on a counter's cart. Immutable once
// added: the only mutation path is remove and re-add.
type LineItem struct {
	LocalID           string          `json:"local_id"`
	MedicineID        string          `json:"medicine_id"`
	MedicineName      string          `json:"medicine_name"`
	BatchNo           string          `json:"batch_no"`
	Quantity          int             `json:"quantity"`
	UnitSellingPrice  decimal.Decimal `json:"unit_selling_price"`
	UnitMRP           decimal.Decimal `json:"unit_mrp"`
	UnitPurchasePrice decimal.Decimal `json:"unit_purchase_price"`
}

// LineTotal is quantity times unit selling price.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitSellingPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is a point-in-time copy of one counter's cart, safe to hand out
// without holding the store lock.
type Snapshot struct {
	CounterID     int                 `json:"counter_id"`
	Phase         enums.CounterPhase  `json:"phase"`
	Customer      Customer            `json:"customer"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Items         []LineItem          `json:"items"`
	Total         decimal.Decimal     `json:"total"`
}

// CustomerPatch updates individual customer fields; nil fields are untouched.
type CustomerPatch struct {
	Name          *string
	ContactNumber *string
}

type counterState struct {
	phase         enums.CounterPhase
	customer      Customer
	paymentMethod enums.PaymentMethod
	items         []LineItem
}

func newCounterState() *counterState {
	return &counterState{
		phase:         enums.CounterPhaseBuilding,
		paymentMethod: enums.PaymentMethodCash,
		items:         nil,
	}
}

func (c *counterState) total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (c *counterState) snapshot(id int) Snapshot {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return Snapshot{
		CounterID:     id,
		Phase:         c.phase,
		Customer:      c.customer,
		PaymentMethod: c.paymentMethod,
		Items:         items,
		Total:         c.total(),
	}
}
