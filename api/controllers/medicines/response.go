package medicines

import (
	"github.com/shopspring/decimal"

	"github.com/rahulverma/medibill-gateway/pkg/pharmacy"
)

type suggestionView struct {
	MedicineID   string `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	BatchNo      string `json:"batch_no,omitempty"`
}

type searchView struct {
	Suggestions []suggestionView `json:"suggestions"`
	State       string           `json:"state"`
}

type detailView struct {
	MedicineID    string `json:"medicine_id"`
	MedicineName  string `json:"medicine_name"`
	BatchNo       string `json:"batch_no,omitempty"`
	StockQuantity int    `json:"stock_quantity"`
	PurchasePrice string `json:"purchase_price"`
	MRP           string `json:"mrp"`
	SellingPrice  string `json:"selling_price"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
}

func newSuggestionViews(candidates []pharmacy.CandidateSummary) []suggestionView {
	views := make([]suggestionView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, suggestionView{
			MedicineID:   c.MedicineID,
			MedicineName: c.MedicineName,
			BatchNo:      c.BatchNo,
		})
	}
	return views
}

func newDetailView(info *pharmacy.MedicineInfo) detailView {
	return detailView{
		MedicineID:    info.MedicineID,
		MedicineName:  info.MedicineName,
		BatchNo:       info.BatchNo,
		StockQuantity: info.StockQuantity,
		PurchasePrice: decimal.NewFromFloat(info.PurchasePrice).StringFixed(2),
		MRP:           decimal.NewFromFloat(info.MRP).StringFixed(2),
		SellingPrice:  decimal.NewFromFloat(info.SellingPrice).StringFixed(2),
		ExpiryDate:    info.ExpiryDate,
	}
}
