// Package request models the decision input (§3 of the transaction
// risk-decision contract) and the per-evaluation RuleContext derived from it.
package request

import (
	"strconv"
	"time"

	"github.com/hollis-varga/riskguard/internal/domain/money"
)

// Request is the parsed, immutable decision input for one evaluation.
type Request struct {
	RequestID   string
	Timestamp   time.Time
	Transaction Transaction
	Card        Card
	Device      Device
	Customer    Customer
}

// Transaction carries the purchase-side fields of a decision input.
type Transaction struct {
	Amount           money.Money
	MerchantID       string
	MerchantCategory int
	POSEntryMode     string
}

// Card carries the payment-instrument fields of a decision input.
type Card struct {
	Token         string
	IssuerCountry string
	CardBrand     string
}

// Device carries the originating-device fields of a decision input.
type Device struct {
	IP          string
	Fingerprint string
	UserAgent   string
}

// Customer carries the account-side fields of a decision input.
type Customer struct {
	ID             string
	RiskScore      float64
	AccountAgeDays int
}

// FeatureCacheKey builds the five-minute-bucketed feature cache key
// described in §4.2: features:{customer_id}:{merchant_id}:{bucket}.
func (r *Request) FeatureCacheKey() string {
	bucket := r.Timestamp.Unix() / 300
	return "features:" + r.Customer.ID + ":" + r.Transaction.MerchantID + ":" + strconv.FormatInt(bucket, 10)
}
