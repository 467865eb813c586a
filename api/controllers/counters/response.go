package counters

import (
	countersvc "github.com/rahulverma/medibill-gateway/internal/counters"
)

type lineItemView struct {
	LocalID          string `json:"local_id"`
	MedicineID       string `json:"medicine_id"`
	MedicineName     string `json:"medicine_name"`
	BatchNo          string `json:"batch_no"`
	Quantity         int    `json:"quantity"`
	UnitSellingPrice string `json:"unit_selling_price"`
	UnitMRP          string `json:"unit_mrp"`
	LineTotal        string `json:"line_total"`
}

type counterView struct {
	CounterID     int                 `json:"counter_id"`
	Phase         string              `json:"phase"`
	Customer      countersvc.Customer `json:"customer"`
	PaymentMethod string              `json:"payment_method"`
	Items         []lineItemView      `json:"items"`
	Total         string              `json:"total"`
}

type counterListView struct {
	Active   int           `json:"active"`
	Counters []counterView `json:"counters"`
}

type clearView struct {
	Cleared bool        `json:"cleared"`
	Counter counterView `json:"counter"`
}

type totalView struct {
	CounterID int    `json:"counter_id"`
	Total     string `json:"total"`
}

type submissionView struct {
	SaleID    string      `json:"sale_id,omitempty"`
	InvoiceNo string      `json:"invoice_no,omitempty"`
	Total     string      `json:"total"`
	Counter   counterView `json:"counter"`
}

func newCounterView(snap countersvc.Snapshot) counterView {
	items := make([]lineItemView, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, lineItemView{
			LocalID:          item.LocalID,
			MedicineID:       item.MedicineID,
			MedicineName:     item.MedicineName,
			BatchNo:          item.BatchNo,
			Quantity:         item.Quantity,
			UnitSellingPrice: item.UnitSellingPrice.StringFixed(2),
			UnitMRP:          item.UnitMRP.StringFixed(2),
			LineTotal:        item.LineTotal().StringFixed(2),
		})
	}
	return counterView{
		CounterID:     snap.CounterID,
		Phase:         snap.Phase.String(),
		Customer:      snap.Customer,
		PaymentMethod: snap.PaymentMethod.String(),
		Items:         items,
		Total:         snap.Total.StringFixed(2),
	}
}
