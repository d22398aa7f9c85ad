package request

// RuleContext is the symbol table bound into a rule expression evaluation.
// Every field here is a variable name a rule expression may reference; the
// set is fixed by §4.2 and must not grow without updating the rule engine's
// symbol table builder alongside it.
type RuleContext struct {
	Amount             float64
	Currency           string
	MerchantID         string
	POSEntryMode       string
	MerchantCategory   int
	CardToken          string
	IssuerCountry      string
	CardBrand          string
	IPAddress          string
	DeviceFingerprint  string
	UserAgent          string
	CustomerID         string
	CustomerRiskScore  float64
	AccountAgeDays     int

	// Feature-store-derived variables, populated from the merchant/customer
	// feature cache (§4.2) rather than the request body directly.
	MerchantRisk      float64
	HourlyCount       int
	AmountSum         float64
	IPBlacklistMatch  bool
}

// NewRuleContext binds the static request fields into a RuleContext. Callers
// fill in the feature-store-derived fields (MerchantRisk, HourlyCount,
// AmountSum, IPBlacklistMatch) separately once the feature lookup resolves.
func NewRuleContext(r *Request) *RuleContext {
	return &RuleContext{
		Amount:            r.Transaction.Amount.ToFloat64(),
		Currency:          r.Transaction.Amount.Currency(),
		MerchantID:        r.Transaction.MerchantID,
		POSEntryMode:      r.Transaction.POSEntryMode,
		MerchantCategory:  r.Transaction.MerchantCategory,
		CardToken:         r.Card.Token,
		IssuerCountry:     r.Card.IssuerCountry,
		CardBrand:         r.Card.CardBrand,
		IPAddress:         r.Device.IP,
		DeviceFingerprint: r.Device.Fingerprint,
		UserAgent:         r.Device.UserAgent,
		CustomerID:        r.Customer.ID,
		CustomerRiskScore: r.Customer.RiskScore,
		AccountAgeDays:    r.Customer.AccountAgeDays,
	}
}

// IsEvaluable reports whether the context carries enough information to run
// the rule and pattern-matching passes. A Request that fails this check
// should be rejected before it ever reaches the orchestrator.
func (c *RuleContext) IsEvaluable() bool {
	if c.CustomerID == "" || c.MerchantID == "" || c.Currency == "" {
		return false
	}
	return c.Amount > 0
}

// AsVariables exposes the context as a name->value map for the rule engine's
// expression evaluator, which resolves identifiers by name rather than by
// struct field.
func (c *RuleContext) AsVariables() map[string]interface{} {
	return map[string]interface{}{
		"amount":              c.Amount,
		"currency":            c.Currency,
		"merchant_id":         c.MerchantID,
		"pos_entry_mode":      c.POSEntryMode,
		"merchant_category":   c.MerchantCategory,
		"card_token":          c.CardToken,
		"issuer_country":      c.IssuerCountry,
		"card_brand":          c.CardBrand,
		"ip_address":          c.IPAddress,
		"device_fingerprint":  c.DeviceFingerprint,
		"user_agent":          c.UserAgent,
		"customer_id":         c.CustomerID,
		"customer_risk_score": c.CustomerRiskScore,
		"account_age_days":    c.AccountAgeDays,
		"merchant_risk":       c.MerchantRisk,
		"hourly_count":        c.HourlyCount,
		"amount_sum":          c.AmountSum,
		"ip_blacklist_match":  c.IPBlacklistMatch,
	}
}
