package entity

// Severity represents the risk tier of a finding or signature rule
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Rank orders severities from LOW (1) to HIGH (3), unknown values rank 0
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the severity is one of the known tiers
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// RiskType tags the kind of risk a finding reports
type RiskType string

const (
	// Signature rule tags
	RiskOwnershipTransfer RiskType = "OWNERSHIP_TRANSFER"
	RiskRenounceOwnership RiskType = "RENOUNCE_OWNERSHIP"
	RiskBlacklist         RiskType = "BLACKLIST"
	RiskWhitelist         RiskType = "WHITELIST"
	RiskPause             RiskType = "PAUSE"
	RiskSelfDestruct      RiskType = "SELF_DESTRUCT"
	RiskUpgrade           RiskType = "UPGRADE"
	RiskMint              RiskType = "MINT"
	RiskBurn              RiskType = "BURN"
	RiskSetFee            RiskType = "SET_FEE"
	RiskRemoveLiquidity   RiskType = "REMOVE_LIQUIDITY"
	RiskLock              RiskType = "LOCK"

	// Analyzer tags
	RiskSuspiciousPattern      RiskType = "SUSPICIOUS_PATTERN"
	RiskMultipleHighRiskOps    RiskType = "MULTIPLE_HIGH_RISK_OPS"
	RiskOwnershipConcentration RiskType = "OWNERSHIP_CONCENTRATION"
	RiskLargeBalanceDecrease   RiskType = "LARGE_BALANCE_DECREASE"
)

// Finding represents one detected risk instance
type Finding struct {
	Type        RiskType       `json:"type"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
}

// Verdict is the final detection decision for a trace
type Verdict struct {
	Detected    bool
	Error       bool
	Message     string
	Findings    []Finding
	FailedSteps []string // analysis steps that did not complete
}

// HasHighSeverity reports whether any of the findings is HIGH
func HasHighSeverity(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// ToDetectionInfo converts the verdict into its wire representation
func (v *Verdict) ToDetectionInfo() DetectionInfo {
	return DetectionInfo{
		Detected:    v.Detected,
		Error:       v.Error,
		Message:     v.Message,
		RiskDetails: v.Findings,
	}
}
