package service

import (
	"fmt"

	"rugpull-detector/internal/domain/entity"
)

// privilegedFollowUps are the operations that turn an ownership transfer into a rugpull pattern
var privilegedFollowUps = map[entity.RiskType]bool{
	entity.RiskMint:            true,
	entity.RiskRemoveLiquidity: true,
	entity.RiskSetFee:          true,
}

// correlatePatterns looks for risky combinations across all matched calls.
// Correlation works on selector matches, regardless of parameter checks.
func correlatePatterns(matches []signatureMatch) []entity.Finding {
	var findings []entity.Finding

	ownershipTransfer := false
	var followUps []string
	seenFollowUp := make(map[entity.RiskType]bool)

	var highRiskSelectors []string
	for _, m := range matches {
		if m.rule.Type == entity.RiskOwnershipTransfer {
			ownershipTransfer = true
		}
		if privilegedFollowUps[m.rule.Type] && !seenFollowUp[m.rule.Type] {
			seenFollowUp[m.rule.Type] = true
			followUps = append(followUps, string(m.rule.Type))
		}
		if m.rule.Severity == entity.SeverityHigh {
			highRiskSelectors = append(highRiskSelectors, "0x"+m.rule.Selector)
		}
	}

	if ownershipTransfer && len(followUps) > 0 {
		findings = append(findings, entity.Finding{
			Type:        entity.RiskSuspiciousPattern,
			Severity:    entity.SeverityHigh,
			Description: "Ownership transfer combined with privileged token operations in the same transaction",
			Details: map[string]any{
				"operations": followUps,
			},
		})
	}

	if count := len(highRiskSelectors); count > 1 {
		findings = append(findings, entity.Finding{
			Type:        entity.RiskMultipleHighRiskOps,
			Severity:    entity.SeverityHigh,
			Description: fmt.Sprintf("Multiple high-risk operations in one transaction (%d calls)", count),
			Details: map[string]any{
				"count":     count,
				"selectors": highRiskSelectors,
			},
		})
	}

	return findings
}
