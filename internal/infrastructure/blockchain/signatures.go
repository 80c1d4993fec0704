package blockchain

import (
	"fmt"
	"math/big"
	"strings"

	"rugpull-detector/internal/domain/entity"
	"rugpull-detector/internal/domain/service"
	"rugpull-detector/internal/infrastructure/config"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// SignatureTable implements the suspicious selector registry
type SignatureTable struct {
	rules      []entity.SignatureRule
	bySelector map[string]int
}

// NewSignatureTable builds the built-in rule table plus configured extra rules.
// A configured rule whose selector is already registered replaces that rule.
func NewSignatureTable(cfg *config.DetectorConfig) (service.SignatureRegistry, error) {
	mintThreshold, err := ParseUnits(cfg.MintThreshold, cfg.TokenDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid mint threshold: %w", err)
	}

	table := &SignatureTable{bySelector: make(map[string]int)}
	for _, rule := range defaultRules(mintThreshold, big.NewInt(cfg.FeeThresholdBps)) {
		if err := table.register(rule); err != nil {
			return nil, err
		}
	}

	for i := range cfg.ExtraRules {
		rule, err := ruleFromConfig(&cfg.ExtraRules[i], cfg.TokenDecimals)
		if err != nil {
			return nil, fmt.Errorf("invalid extra rule %d: %w", i, err)
		}
		if err := table.register(rule); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// Lookup returns the rule registered for a selector
func (t *SignatureTable) Lookup(selector string) (*entity.SignatureRule, bool) {
	idx, ok := t.bySelector[strings.ToLower(stripHexPrefix(selector))]
	if !ok {
		return nil, false
	}
	return &t.rules[idx], true
}

// Rules returns a copy of all registered rules in table order
func (t *SignatureTable) Rules() []entity.SignatureRule {
	out := make([]entity.SignatureRule, len(t.rules))
	copy(out, t.rules)
	return out
}

func (t *SignatureTable) register(rule entity.SignatureRule) error {
	if err := validateRule(&rule); err != nil {
		return err
	}
	if idx, exists := t.bySelector[rule.Selector]; exists {
		t.rules[idx] = rule
		return nil
	}
	t.rules = append(t.rules, rule)
	t.bySelector[rule.Selector] = len(t.rules) - 1
	return nil
}

// newRule derives the selector of a rule from its canonical signature
func newRule(name string, riskType entity.RiskType, severity entity.Severity, description string, check *entity.ParamCheck) entity.SignatureRule {
	return entity.SignatureRule{
		Selector:    SelectorOf(name),
		Name:        name,
		Type:        riskType,
		Severity:    severity,
		Description: description,
		Check:       check,
	}
}

// defaultRules returns the built-in suspicious selector table
func defaultRules(mintThreshold, feeThresholdBps *big.Int) []entity.SignatureRule {
	mintCheck := &entity.ParamCheck{Arg: "amount", Index: 1, Op: entity.OpGreaterThan, Threshold: mintThreshold}
	feeCheck := &entity.ParamCheck{Arg: "fee", Index: 0, Op: entity.OpGreaterThan, Threshold: feeThresholdBps}

	return []entity.SignatureRule{
		// Ownership
		newRule("transferOwnership(address)", entity.RiskOwnershipTransfer, entity.SeverityHigh,
			"Contract ownership is being transferred", nil),
		newRule("renounceOwnership()", entity.RiskRenounceOwnership, entity.SeverityLow,
			"Contract ownership is being renounced", nil),

		// Access restrictions
		newRule("addToBlacklist(address)", entity.RiskBlacklist, entity.SeverityHigh,
			"Address is being blacklisted, which can block holders from selling", nil),
		newRule("blacklist(address)", entity.RiskBlacklist, entity.SeverityHigh,
			"Address is being blacklisted, which can block holders from selling", nil),
		newRule("addToWhitelist(address)", entity.RiskWhitelist, entity.SeverityMedium,
			"Address is being whitelisted for privileged trading", nil),
		newRule("pause()", entity.RiskPause, entity.SeverityMedium,
			"Contract is being paused, freezing transfers", nil),

		// Contract lifecycle
		newRule("kill()", entity.RiskSelfDestruct, entity.SeverityHigh,
			"Contract self-destruct is being invoked", nil),
		newRule("destroy()", entity.RiskSelfDestruct, entity.SeverityHigh,
			"Contract self-destruct is being invoked", nil),
		newRule("upgradeTo(address)", entity.RiskUpgrade, entity.SeverityHigh,
			"Contract implementation is being upgraded", nil),
		newRule("upgradeToAndCall(address,bytes)", entity.RiskUpgrade, entity.SeverityHigh,
			"Contract implementation is being upgraded", nil),

		// Supply
		newRule("mint(address,uint256)", entity.RiskMint, entity.SeverityHigh,
			"Large amount of tokens is being minted", mintCheck),
		newRule("burn(uint256)", entity.RiskBurn, entity.SeverityLow,
			"Tokens are being burned", nil),

		// Fees
		newRule("setFee(uint256)", entity.RiskSetFee, entity.SeverityHigh,
			"Transaction fee is being set above 10%", feeCheck),
		newRule("setTaxFeePercent(uint256)", entity.RiskSetFee, entity.SeverityHigh,
			"Transaction fee is being set above 10%", feeCheck),

		// Liquidity
		newRule("removeLiquidity(address,address,uint256,uint256,uint256,address,uint256)", entity.RiskRemoveLiquidity, entity.SeverityHigh,
			"Liquidity is being removed from the pool", nil),
		newRule("removeLiquidityETH(address,uint256,uint256,uint256,address,uint256)", entity.RiskRemoveLiquidity, entity.SeverityHigh,
			"Liquidity is being removed from the pool", nil),
		newRule("lock(uint256)", entity.RiskLock, entity.SeverityMedium,
			"Ownership is being temporarily locked and can be reclaimed later", nil),
	}
}

// ruleFromConfig converts a configured rule into a signature rule
func ruleFromConfig(rc *config.RuleConfig, decimals int32) (entity.SignatureRule, error) {
	severity := entity.Severity(strings.ToUpper(rc.Severity))
	if !severity.IsValid() {
		return entity.SignatureRule{}, fmt.Errorf("unknown severity %q", rc.Severity)
	}
	if rc.Type == "" {
		return entity.SignatureRule{}, fmt.Errorf("rule %s has no type", rc.Name)
	}

	var check *entity.ParamCheck
	if rc.Check != nil {
		threshold, err := parseThreshold(rc.Check, decimals)
		if err != nil {
			return entity.SignatureRule{}, err
		}
		op := entity.CompareOp(strings.ToLower(rc.Check.Op))
		if op == "" {
			op = entity.OpGreaterThan
		}
		check = &entity.ParamCheck{
			Arg:       rc.Check.Arg,
			Index:     rc.Check.Index,
			Op:        op,
			Threshold: threshold,
		}
	}

	return newRule(strings.TrimSpace(rc.Name), entity.RiskType(strings.ToUpper(rc.Type)), severity, rc.Description, check), nil
}

func parseThreshold(pc *config.ParamCheckConfig, decimals int32) (*big.Int, error) {
	if pc.TokenUnits {
		return ParseUnits(pc.Threshold, decimals)
	}
	threshold, ok := new(big.Int).SetString(strings.TrimSpace(pc.Threshold), 10)
	if !ok {
		return nil, fmt.Errorf("invalid threshold %q", pc.Threshold)
	}
	return threshold, nil
}

// validateRule checks that a rule's signature parses and its check targets an integer argument
func validateRule(rule *entity.SignatureRule) error {
	_, args, err := ParseSignature(rule.Name)
	if err != nil {
		return err
	}
	if rule.Check == nil {
		return nil
	}

	switch rule.Check.Op {
	case entity.OpGreaterThan, entity.OpGreaterOrEq, entity.OpLessThan:
	default:
		return fmt.Errorf("rule %s: unknown comparison %q", rule.Name, rule.Check.Op)
	}
	if rule.Check.Threshold == nil {
		return fmt.Errorf("rule %s: check has no threshold", rule.Name)
	}
	if rule.Check.Index < 0 || rule.Check.Index >= len(args) {
		return fmt.Errorf("rule %s: argument index %d out of range", rule.Name, rule.Check.Index)
	}
	if t := args[rule.Check.Index].Type.T; t != abi.UintTy && t != abi.IntTy {
		return fmt.Errorf("rule %s: argument %d is not an integer", rule.Name, rule.Check.Index)
	}
	return nil
}
