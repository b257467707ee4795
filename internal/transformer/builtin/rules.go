package builtin

import (
	"fmt"

	"salesetl/internal/records"
)

// DefaultShipModes is the ship mode enumeration used when none is configured.
var DefaultShipModes = []string{"Standard Class", "First Class", "Second Class", "Same Day"}

// DefaultShipMode replaces ship modes outside the enumeration.
const DefaultShipMode = "Standard Class"

// ISODate is the canonical persisted date layout.
const ISODate = "2006-01-02"

// Rule names, in evaluation order.
const (
	RuleQuantity     = "quantity"
	RuleDiscount     = "discount"
	RuleSales        = "sales"
	RuleRequiredKeys = "required_keys"
)

// RuleNames lists every rejecting rule in evaluation order.
var RuleNames = []string{RuleQuantity, RuleDiscount, RuleSales, RuleRequiredKeys}

// RejectedRow describes a sale dropped by a rule. Only the first failing
// rule is reported.
type RejectedRow struct {
	Line    int
	OrderID string
	Rule    string
	Reason  string
}

// Rules enforces the business invariants on cleaned sales. It is a pure,
// order-preserving filter: the input is not modified and no I/O happens
// unless Reject does some.
type Rules struct {
	// ShipModes is the accepted enumeration. Nil means DefaultShipModes.
	ShipModes []string
	// DefaultShipMode replaces unknown ship modes. Empty means DefaultShipMode.
	DefaultShipMode string
	// Reject, when set, receives every dropped row in input order.
	Reject func(RejectedRow)
}

// RuleResult is the outcome of Rules.Apply.
type RuleResult struct {
	Valid []records.Sale
	// Rejected counts dropped rows per rule name.
	Rejected map[string]int
	// ShipModeFixed counts surviving and dropped rows whose ship mode was
	// replaced by the default.
	ShipModeFixed int
}

// RejectedTotal sums Rejected.
func (r RuleResult) RejectedTotal() int {
	n := 0
	for _, c := range r.Rejected {
		n += c
	}
	return n
}

// Apply evaluates the rules in order:
//  1. ship mode outside the enumeration is replaced (a correction)
//  2. quantity null or <= 0 rejects
//  3. discount null, < 0 or > 1 rejects
//  4. sales null or < 0 rejects
//  5. null order_id, product_id, customer_id or order_date rejects
//
// Survivors get their dates formatted as ISO calendar dates.
func (r Rules) Apply(in []records.Sale) RuleResult {
	modes := r.ShipModes
	if modes == nil {
		modes = DefaultShipModes
	}
	valid := make(map[string]struct{}, len(modes))
	for _, m := range modes {
		valid[m] = struct{}{}
	}
	def := r.DefaultShipMode
	if def == "" {
		def = DefaultShipMode
	}

	res := RuleResult{
		Valid:    make([]records.Sale, 0, len(in)),
		Rejected: make(map[string]int, len(RuleNames)),
	}
	for _, s := range in {
		if _, ok := valid[s.ShipMode.String]; !ok || !s.ShipMode.Valid {
			s.ShipMode = records.NullString(def)
			res.ShipModeFixed++
		}

		if rule, reason := check(s); rule != "" {
			res.Rejected[rule]++
			if r.Reject != nil {
				r.Reject(RejectedRow{Line: s.Line, OrderID: s.OrderID.String, Rule: rule, Reason: reason})
			}
			continue
		}

		s.OrderDateISO = s.OrderDate.Time.Format(ISODate)
		if s.ShipDate.Valid {
			s.ShipDateISO = records.NullString(s.ShipDate.Time.Format(ISODate))
		} else {
			s.ShipDateISO.Valid = false
		}
		res.Valid = append(res.Valid, s)
	}
	return res
}

// check returns the first rule s fails, or "" when it passes all of them.
func check(s records.Sale) (rule, reason string) {
	switch {
	case !s.Quantity.Valid:
		return RuleQuantity, "quantity is missing or not a number"
	case s.Quantity.Float64 <= 0:
		return RuleQuantity, fmt.Sprintf("quantity %g is not positive", s.Quantity.Float64)
	case !s.Discount.Valid:
		return RuleDiscount, "discount is missing or not a number"
	case s.Discount.Float64 < 0 || s.Discount.Float64 > 1:
		return RuleDiscount, fmt.Sprintf("discount %g is outside [0,1]", s.Discount.Float64)
	case !s.Sales.Valid:
		return RuleSales, "sales is missing or not a number"
	case s.Sales.Float64 < 0:
		return RuleSales, fmt.Sprintf("sales %g is negative", s.Sales.Float64)
	case !s.OrderID.Valid:
		return RuleRequiredKeys, "order_id is missing"
	case !s.ProductID.Valid:
		return RuleRequiredKeys, "product_id is missing"
	case !s.CustomerID.Valid:
		return RuleRequiredKeys, "customer_id is missing"
	case !s.OrderDate.Valid:
		return RuleRequiredKeys, "order_date is missing or not a date"
	}
	return "", ""
}
