package decision

import (
	"net"

	"github.com/hollis-varga/riskguard/internal/domain/request"
)

// Fixed adjustment increments from §4.5 step 5.
const (
	adjustmentHighAmount        = 25.0
	adjustmentNonMajorCurrency  = 15.0
	adjustmentHighCustomerRisk  = 30.0
	adjustmentNewAccount        = 20.0
	adjustmentPrivateIPHit      = 10.0

	highAmountThreshold       = 10_000.0
	highCustomerRiskThreshold = 70.0
	newAccountDays            = 30
)

// adjustment is one categorical, deterministic score contribution applied
// during fusion, carrying the synthetic reason id named in triggered_rules.
type adjustment struct {
	ReasonID string
	Amount   float64
}

// applyAdjustments evaluates the fixed deterministic adjustments from
// §4.5 step 5 against the request, returning each
// adjustment that applied.
func applyAdjustments(req *request.Request, isMajorCurrency bool) []adjustment {
	var out []adjustment

	if req.Transaction.Amount.ToFloat64() > highAmountThreshold {
		out = append(out, adjustment{ReasonID: "adj:high_amount", Amount: adjustmentHighAmount})
	}
	if !isMajorCurrency {
		out = append(out, adjustment{ReasonID: "adj:non_major_currency", Amount: adjustmentNonMajorCurrency})
	}
	if req.Customer.RiskScore > highCustomerRiskThreshold {
		out = append(out, adjustment{ReasonID: "adj:high_customer_risk", Amount: adjustmentHighCustomerRisk})
	}
	if req.Customer.AccountAgeDays < newAccountDays {
		out = append(out, adjustment{ReasonID: "adj:new_account", Amount: adjustmentNewAccount})
	}
	if isPrivateIP(req.Device.IP) {
		out = append(out, adjustment{ReasonID: "adj:private_ip_hit", Amount: adjustmentPrivateIPHit})
	}

	return out
}

// isHighRisk reports the high_risk override condition from §4.5 step 6:
// customer_risk > 70 or amount > 10,000 forces the decision to at least DECLINE.
func isHighRisk(req *request.Request) bool {
	return req.Customer.RiskScore > highCustomerRiskThreshold || req.Transaction.Amount.ToFloat64() > highAmountThreshold
}

var privateNetworks = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"fc00::/7",
	"::1/128",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, ipnet, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, ipnet)
	}
	return nets
}

// isPrivateIP reports whether ip falls within a standard private/loopback/
// link-local range, treated by fusion as a "private-IP hit".
func isPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range privateNetworks {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}
