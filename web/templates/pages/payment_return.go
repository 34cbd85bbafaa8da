package pages

// PaymentReturnProps feeds the page guests land on after checkout
type PaymentReturnProps struct {
	Title         string
	Succeeded     bool
	Message       string
	TransactionID string
	Amount        string
}
