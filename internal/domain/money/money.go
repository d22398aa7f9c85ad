// Package money provides a currency-aware decimal value object used for
// transaction amounts flowing through the decision core.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with currency and precision handling.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// majorCurrencies are the currencies the fusion step treats as "major" for
// purposes of the non-major-currency risk adjustment.
var majorCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CAD": true,
	"AUD": true, "CHF": true, "CNY": true, "SEK": true, "NZD": true,
}

// NewMoney creates a new Money value object.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if err := validateCurrency(currency); err != nil {
		return Money{}, err
	}

	return Money{
		amount:   amount,
		currency: strings.ToUpper(currency),
	}, nil
}

// NewMoneyFromFloat creates Money from a float64 amount and currency.
// Use with caution due to floating point precision issues; the decision
// pipeline itself only reads through Amount()/ToFloat64() for comparisons.
func NewMoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// MustNewMoneyFromFloat creates Money from float and panics on error (for fixtures/tests).
func MustNewMoneyFromFloat(amount float64, currency string) Money {
	m, err := NewMoneyFromFloat(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero Money value in the given currency.
func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: strings.ToUpper(currency)}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() string {
	return m.currency
}

// IsMajor reports whether the currency is one of the common settlement
// currencies used by the non-major-currency fusion adjustment.
func (m Money) IsMajor() bool {
	return majorCurrencies[m.currency]
}

// String returns a formatted money string, e.g. "123.45 USD".
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

// IsZero checks if the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive checks if the amount is positive.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Compare returns -1, 0, or 1 based on comparison with other Money.
// Panics if currencies don't match.
func (m Money) Compare(other Money) int {
	if m.currency != other.currency {
		panic(fmt.Sprintf("cannot compare different currencies: %s vs %s", m.currency, other.currency))
	}
	return m.amount.Cmp(other.amount)
}

// ToFloat64 converts to float64. The decision engine binds amount into rule
// expressions as a float64, so this is the primary extraction point.
func (m Money) ToFloat64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// MarshalJSON renders Money as {"amount":"...","currency":"..."}.
func (m Money) MarshalJSON() ([]byte, error) {
	data := struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	}
	return json.Marshal(data)
}

// UnmarshalJSON parses Money from {"amount":"...","currency":"..."}.
func (m *Money) UnmarshalJSON(data []byte) error {
	var temp struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}

	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(temp.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	money, err := NewMoney(amount, temp.Currency)
	if err != nil {
		return err
	}

	*m = money
	return nil
}

func validateCurrency(currency string) error {
	if len(currency) != 3 {
		return fmt.Errorf("currency code must be 3 characters, got %q", currency)
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			if r < 'a' || r > 'z' {
				return fmt.Errorf("currency code must be alphabetic, got %q", currency)
			}
		}
	}
	return nil
}
