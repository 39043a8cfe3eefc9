// README: Common money value object used across modules.
package types

// CurrencyRWF is the only currency the marketplace quotes in.
const CurrencyRWF = "RWF"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func RWF(amount int64) Money {
	return Money{Amount: amount, Currency: CurrencyRWF}
}
