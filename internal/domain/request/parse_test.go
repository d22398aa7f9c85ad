package request

import (
	"testing"

	apperrors "github.com/hollis-varga/riskguard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocumentJSON() string {
	return `{
		"request_id": "req-1",
		"timestamp_ms": 1700000000000,
		"transaction": {
			"amount": 120.50,
			"currency": "USD",
			"merchant_id": "merch-1",
			"merchant_category": 5411,
			"pos_entry_mode": "chip"
		},
		"card": {
			"card_token": "tok-abc",
			"issuer_country": "US",
			"card_brand": "visa"
		},
		"device": {
			"ip_address": "203.0.113.5",
			"device_fingerprint": "fp-1",
			"user_agent": "ua-1"
		},
		"customer": {
			"customer_id": "cust-1",
			"customer_risk_score": 12.5,
			"account_age_days": 400
		}
	}`
}

func TestParseRequest_Valid(t *testing.T) {
	req, err := ParseRequest([]byte(validDocumentJSON()))
	require.NoError(t, err)
	require.NotNil(t, req)

	assert.Equal(t, "req-1", req.RequestID)
	assert.Equal(t, "merch-1", req.Transaction.MerchantID)
	assert.Equal(t, "USD", req.Transaction.Amount.Currency())
	assert.Equal(t, "cust-1", req.Customer.ID)
	assert.Equal(t, 400, req.Customer.AccountAgeDays)
}

func TestParseRequest_EmptyBody(t *testing.T) {
	_, err := ParseRequest([]byte{})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func TestParseRequest_MalformedJSON(t *testing.T) {
	_, err := ParseRequest([]byte(`{"request_id":`))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidDocument, apperrors.KindOf(err))
}

func TestParseRequest_InvalidAmount(t *testing.T) {
	_, err := ParseRequest([]byte(`{
		"request_id": "req-1",
		"timestamp_ms": 1700000000000,
		"transaction": {"amount": -5, "currency": "USD", "merchant_id": "m", "merchant_category": 1},
		"card": {"card_token": "tok", "issuer_country": "US"},
		"device": {"ip_address": "203.0.113.5"},
		"customer": {"customer_id": "cust-1", "customer_risk_score": 1, "account_age_days": 1}
	}`))
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AMOUNT", appErr.Code)
}

func TestParseRequest_InvalidCurrency(t *testing.T) {
	_, err := ParseRequest([]byte(`{
		"request_id": "req-1",
		"timestamp_ms": 1700000000000,
		"transaction": {"amount": 10, "currency": "US", "merchant_id": "m", "merchant_category": 1},
		"card": {"card_token": "tok", "issuer_country": "US"},
		"device": {"ip_address": "203.0.113.5"},
		"customer": {"customer_id": "cust-1", "customer_risk_score": 1, "account_age_days": 1}
	}`))
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CURRENCY", appErr.Code)
}

func TestParseRequest_InvalidIP(t *testing.T) {
	_, err := ParseRequest([]byte(`{
		"request_id": "req-1",
		"timestamp_ms": 1700000000000,
		"transaction": {"amount": 10, "currency": "USD", "merchant_id": "m", "merchant_category": 1},
		"card": {"card_token": "tok", "issuer_country": "US"},
		"device": {"ip_address": "not-an-ip"},
		"customer": {"customer_id": "cust-1", "customer_risk_score": 1, "account_age_days": 1}
	}`))
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "IP_ADDRESS", appErr.Code)
}

func TestRuleContext_IsEvaluable(t *testing.T) {
	req, err := ParseRequest([]byte(validDocumentJSON()))
	require.NoError(t, err)

	ctx := NewRuleContext(req)
	assert.True(t, ctx.IsEvaluable())

	ctx.Amount = 0
	assert.False(t, ctx.IsEvaluable())
}

func TestRequest_FeatureCacheKey(t *testing.T) {
	req, err := ParseRequest([]byte(validDocumentJSON()))
	require.NoError(t, err)

	key := req.FeatureCacheKey()
	assert.Contains(t, key, "features:cust-1:merch-1:")
}
