package counters

import "github.com/shopspring/decimal"

type updateCustomerRequest struct {
	Name          *string `json:"name"`
	ContactNumber *string `json:"contact_number"`
}

type setPaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type addItemRequest struct {
	MedicineID       string          `json:"medicine_id" validate:"required"`
	Quantity         int             `json:"quantity" validate:"required"`
	UnitSellingPrice decimal.Decimal `json:"unit_selling_price" validate:"required"`
	ConfirmBelowCost bool            `json:"confirm_below_cost"`
}

type clearRequest struct {
	Confirm bool `json:"confirm"`
}
