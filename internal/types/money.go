// README: Common money value object used across modules.
package types

// DefaultCurrency is the currency of every fare the console displays.
const DefaultCurrency = "INR"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func Rupees(amount int64) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}
