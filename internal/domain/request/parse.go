package request

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hollis-varga/riskguard/internal/domain/money"
	"github.com/hollis-varga/riskguard/internal/domain/validation"
	apperrors "github.com/hollis-varga/riskguard/internal/errors"
)

const component = "request"

// Document is the wire shape of a decision-input request body (§3).
type Document struct {
	RequestID   string          `json:"request_id"`
	TimestampMs int64           `json:"timestamp_ms"`
	Transaction TransactionDoc  `json:"transaction"`
	Card        CardDoc         `json:"card"`
	Device      DeviceDoc       `json:"device"`
	Customer    CustomerDoc     `json:"customer"`
}

// TransactionDoc is the wire shape of Document.Transaction.
type TransactionDoc struct {
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	MerchantID       string  `json:"merchant_id"`
	MerchantCategory int     `json:"merchant_category"`
	POSEntryMode     string  `json:"pos_entry_mode"`
}

// CardDoc is the wire shape of Document.Card.
type CardDoc struct {
	Token         string `json:"card_token"`
	IssuerCountry string `json:"issuer_country"`
	CardBrand     string `json:"card_brand"`
}

// DeviceDoc is the wire shape of Document.Device.
type DeviceDoc struct {
	IP          string `json:"ip_address"`
	Fingerprint string `json:"device_fingerprint"`
	UserAgent   string `json:"user_agent"`
}

// CustomerDoc is the wire shape of Document.Customer.
type CustomerDoc struct {
	ID             string  `json:"customer_id"`
	RiskScore      float64 `json:"customer_risk_score"`
	AccountAgeDays int     `json:"account_age_days"`
}

// ParseRequest decodes and validates a decision-input body, returning a
// typed *errors.AppError (InvalidDocument for malformed JSON, InvalidRequest
// for a field that fails validation) on any failure. A document that omits
// request_id gets one generated before validation, so the field is always
// populated on the way out.
func ParseRequest(body []byte) (*Request, error) {
	if err := validation.ValidateEnvelopeSize(body); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "ENVELOPE_SIZE", err.Error())
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperrors.NewInvalidDocument(component, err.Error())
	}

	if doc.RequestID == "" {
		doc.RequestID = uuid.NewString()
	}
	if err := validation.ValidateRequestID(doc.RequestID); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "REQUEST_ID", err.Error())
	}
	if err := validation.ValidateTimestamp(doc.TimestampMs); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "TIMESTAMP", err.Error())
	}
	if err := validation.ValidateAmount(doc.Transaction.Amount); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "AMOUNT", err.Error())
	}
	if err := validation.ValidateCurrency(doc.Transaction.Currency); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "CURRENCY", err.Error())
	}
	if err := validation.ValidateBoundedString("merchant_id", doc.Transaction.MerchantID, 50, true); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "MERCHANT_ID", err.Error())
	}
	if err := validation.ValidateMerchantCategory(doc.Transaction.MerchantCategory); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "MERCHANT_CATEGORY", err.Error())
	}
	if err := validation.ValidateBoundedString("pos_entry_mode", doc.Transaction.POSEntryMode, 20, false); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "POS_ENTRY_MODE", err.Error())
	}
	if err := validation.ValidateBoundedString("card_token", doc.Card.Token, 100, true); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "CARD_TOKEN", err.Error())
	}
	if err := validation.ValidateIssuerCountry(doc.Card.IssuerCountry); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "ISSUER_COUNTRY", err.Error())
	}
	if err := validation.ValidateBoundedString("card_brand", doc.Card.CardBrand, 20, false); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "CARD_BRAND", err.Error())
	}
	if err := validation.ValidateIP(doc.Device.IP); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "IP_ADDRESS", err.Error())
	}
	if err := validation.ValidateBoundedString("device_fingerprint", doc.Device.Fingerprint, 100, false); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "DEVICE_FINGERPRINT", err.Error())
	}
	if err := validation.ValidateBoundedString("user_agent", doc.Device.UserAgent, 500, false); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "USER_AGENT", err.Error())
	}
	if err := validation.ValidateBoundedString("customer_id", doc.Customer.ID, 50, true); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "CUSTOMER_ID", err.Error())
	}
	if err := validation.ValidateRiskScore(doc.Customer.RiskScore); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "CUSTOMER_RISK_SCORE", err.Error())
	}
	if err := validation.ValidateAccountAgeDays(doc.Customer.AccountAgeDays); err != nil {
		return nil, apperrors.NewInvalidRequest(component, "ACCOUNT_AGE_DAYS", err.Error())
	}

	amount, err := money.NewMoneyFromFloat(doc.Transaction.Amount, doc.Transaction.Currency)
	if err != nil {
		return nil, apperrors.NewInvalidRequest(component, "CURRENCY", err.Error())
	}

	return &Request{
		RequestID: doc.RequestID,
		Timestamp: time.UnixMilli(doc.TimestampMs).UTC(),
		Transaction: Transaction{
			Amount:           amount,
			MerchantID:       doc.Transaction.MerchantID,
			MerchantCategory: doc.Transaction.MerchantCategory,
			POSEntryMode:     doc.Transaction.POSEntryMode,
		},
		Card: Card{
			Token:         doc.Card.Token,
			IssuerCountry: doc.Card.IssuerCountry,
			CardBrand:     doc.Card.CardBrand,
		},
		Device: Device{
			IP:          doc.Device.IP,
			Fingerprint: doc.Device.Fingerprint,
			UserAgent:   doc.Device.UserAgent,
		},
		Customer: Customer{
			ID:             doc.Customer.ID,
			RiskScore:      doc.Customer.RiskScore,
			AccountAgeDays: doc.Customer.AccountAgeDays,
		},
	}, nil
}
