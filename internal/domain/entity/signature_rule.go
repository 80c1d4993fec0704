package entity

import (
	"math/big"
)

// CompareOp is the comparison a parameter check applies to a decoded argument
type CompareOp string

const (
	OpGreaterThan CompareOp = "gt"
	OpGreaterOrEq CompareOp = "gte"
	OpLessThan    CompareOp = "lt"
)

// ParamCheck describes a predicate over one decoded call argument.
// Only integer arguments can be checked.
type ParamCheck struct {
	Arg       string    // name reported in finding details, e.g. "amount"
	Index     int       // position in the argument list of the rule's signature
	Op        CompareOp // comparison applied as <arg> Op <threshold>
	Threshold *big.Int
}

// Holds reports whether value satisfies the check
func (c *ParamCheck) Holds(value *big.Int) bool {
	cmp := value.Cmp(c.Threshold)
	switch c.Op {
	case OpGreaterThan:
		return cmp > 0
	case OpGreaterOrEq:
		return cmp >= 0
	case OpLessThan:
		return cmp < 0
	default:
		return false
	}
}

// SignatureRule represents a known suspicious function selector
type SignatureRule struct {
	Selector    string // 8 lowercase hex chars, no 0x prefix
	Name        string // canonical signature, e.g. "mint(address,uint256)"
	Type        RiskType
	Severity    Severity
	Description string
	Check       *ParamCheck
}

// IsGated reports whether the rule only fires when its parameter check holds
func (r *SignatureRule) IsGated() bool {
	return r.Check != nil
}
