// Package allocation implements the pure core of the sub-account backend:
// the rule evaluator that splits an inbound amount over allocation rules
// and the scheduler that computes the next run of a scheduled rule.
//
// The package is free of persistence concerns so that both the
// on-receive batch path and the scheduled path evaluate rules through
// the exact same code.
package allocation

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleType determines how the amount of an allocation is computed.
type RuleType string

const (
	TypePercentage  RuleType = "PERCENTAGE"
	TypeFixedAmount RuleType = "FIXED_AMOUNT"
	TypeRemainder   RuleType = "REMAINDER"
)

// Valid reports whether the rule type is known.
func (t RuleType) Valid() bool {
	switch t {
	case TypePercentage, TypeFixedAmount, TypeRemainder:
		return true
	}

	return false
}

// Rule is the evaluator's view of an allocation rule.
//
// Rules must be passed to Evaluate in creation order, which is the
// tie-breaker between rules with equal priority.
type Rule struct {
	ID               uuid.UUID
	SubAccountID     uuid.UUID
	Type             RuleType
	Percentage       decimal.Decimal // 0 < p <= 100, only for TypePercentage
	FixedAmount      decimal.Decimal // > 0, only for TypeFixedAmount
	MinTriggerAmount decimal.Decimal // rules gate themselves when the total is below this
	Priority         int             // higher priority rules are evaluated first
}

// Allocation is one credit the evaluator decided on.
type Allocation struct {
	RuleID       uuid.UUID
	SubAccountID uuid.UUID
	Amount       decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Evaluate splits total over the rules and returns the allocations in
// the order they were decided.
//
// Percentages are computed against the original total, not the
// shrinking remainder. Fixed amounts are capped at what is left, so the
// sum of all allocations never exceeds total. Exactly one remainder
// rule, the first by priority, absorbs whatever is left after the first
// pass. Gated rules (MinTriggerAmount above total) produce no
// allocation, which is not an error.
func Evaluate(rules []Rule, total decimal.Decimal) []Allocation {
	if !total.IsPositive() {
		return nil
	}

	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	var allocations []Allocation
	remaining := total

	// Pass 1: percentage and fixed amount rules
	for _, rule := range ordered {
		if rule.MinTriggerAmount.GreaterThan(total) {
			continue
		}

		var amount decimal.Decimal
		switch rule.Type {
		case TypePercentage:
			amount = total.Mul(rule.Percentage).Div(oneHundred)
		case TypeFixedAmount:
			amount = rule.FixedAmount
		case TypeRemainder:
			continue
		default:
			continue
		}

		// Never allocate more than what is left of the inbound amount
		if amount.GreaterThan(remaining) {
			amount = remaining
		}

		if !amount.IsPositive() {
			continue
		}

		allocations = append(allocations, Allocation{
			RuleID:       rule.ID,
			SubAccountID: rule.SubAccountID,
			Amount:       amount,
		})
		remaining = remaining.Sub(amount)
	}

	// Pass 2: the highest-priority remainder rule absorbs what is left
	for _, rule := range ordered {
		if rule.Type != TypeRemainder {
			continue
		}

		if rule.MinTriggerAmount.GreaterThan(total) {
			continue
		}

		if remaining.IsPositive() {
			allocations = append(allocations, Allocation{
				RuleID:       rule.ID,
				SubAccountID: rule.SubAccountID,
				Amount:       remaining,
			})
		}

		// Only one remainder sink fires per evaluation
		break
	}

	return allocations
}
