package domain

// ReceiptHeader is the store header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem is a single printed line item. Money fields are already
// formatted with the engine's rounding rule.
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Discount  string `json:"discount,omitempty"`
	Total     string `json:"total"`
}

// Receipt is a value object composed from a completed Transaction at print
// time. It is never persisted and never mutates its source.
type Receipt struct {
	Header        ReceiptHeader `json:"header"`
	TransactionID string        `json:"transaction_id"`
	Date          string        `json:"date"`
	Customer      string        `json:"customer,omitempty"`
	Items         []ReceiptItem `json:"items"`
	Subtotal      string        `json:"subtotal"`
	Discount      string        `json:"discount"`
	VoucherCode   string        `json:"voucher_code,omitempty"`
	NetTotal      string        `json:"net_total"`
	Cash          string        `json:"cash"`
	Card          string        `json:"card"`
	ChangeDue     string        `json:"change_due"`
}
