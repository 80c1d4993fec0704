package service

import (
	"fmt"
	"math/big"

	"rugpull-detector/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// signatureMatch records a call whose selector is in the rule table
type signatureMatch struct {
	index int
	call  *entity.Call
	rule  *entity.SignatureRule
}

// matchSignatures compares every call selector against the rule table.
// Predicate-gated rules only yield a finding when the predicate holds, or
// when the arguments cannot be decoded.
func (s *DetectionService) matchSignatures(trace *entity.Trace) ([]signatureMatch, []entity.Finding) {
	var (
		matches  []signatureMatch
		findings []entity.Finding
	)

	for i := range trace.Calls {
		call := &trace.Calls[i]

		selector, err := s.decoder.Selector(call.Input)
		if err != nil {
			s.logger.Debug("Skipping call without a readable selector",
				zap.Int("call_index", i),
				zap.String("to", call.To),
				zap.Error(err))
			continue
		}

		rule, ok := s.registry.Lookup(selector)
		if !ok {
			continue
		}
		matches = append(matches, signatureMatch{index: i, call: call, rule: rule})

		finding := entity.Finding{
			Type:        rule.Type,
			Severity:    rule.Severity,
			Description: rule.Description,
			Details: map[string]any{
				"selector":  "0x" + rule.Selector,
				"function":  rule.Name,
				"callIndex": i,
				"from":      call.From,
				"to":        call.To,
			},
		}

		if rule.IsGated() {
			params, holds, err := s.evaluateCheck(rule, call)
			if err != nil {
				s.logger.Debug("Parameter decoding failed, reporting without details",
					zap.String("function", rule.Name),
					zap.Int("call_index", i),
					zap.Error(err))
				findings = append(findings, finding)
				continue
			}
			if !holds {
				continue
			}
			finding.Details["params"] = params
		}

		findings = append(findings, finding)
	}

	return matches, findings
}

// evaluateCheck decodes a call's arguments and applies the rule's parameter check
func (s *DetectionService) evaluateCheck(rule *entity.SignatureRule, call *entity.Call) (map[string]any, bool, error) {
	values, err := s.decoder.DecodeArguments(rule.Name, call.Input)
	if err != nil {
		return nil, false, err
	}

	check := rule.Check
	if check.Index >= len(values) {
		return nil, false, fmt.Errorf("argument %d not decoded, got %d values", check.Index, len(values))
	}
	value, ok := toBigInt(values[check.Index])
	if !ok {
		return nil, false, fmt.Errorf("argument %d of %s is %T, not an integer", check.Index, rule.Name, values[check.Index])
	}

	params := make(map[string]any, len(values))
	for i, v := range values {
		name := fmt.Sprintf("arg%d", i)
		if i == check.Index && check.Arg != "" {
			name = check.Arg
		}
		params[name] = formatArgument(v)
	}

	return params, check.Holds(value), nil
}

// toBigInt widens any decoded ABI integer into a big.Int
func toBigInt(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case *big.Int:
		return n, n != nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	default:
		return nil, false
	}
}

// formatArgument renders a decoded ABI value in a JSON-friendly form
func formatArgument(v any) any {
	switch a := v.(type) {
	case *big.Int:
		return a.String()
	case common.Address:
		return a.Hex()
	case []byte:
		return hexutil.Encode(a)
	default:
		if n, ok := toBigInt(v); ok {
			return n.String()
		}
		return v
	}
}
