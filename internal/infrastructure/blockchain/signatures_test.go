package blockchain

import (
	"math/big"
	"testing"

	"rugpull-detector/internal/domain/entity"
	"rugpull-detector/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultTable(t *testing.T) *SignatureTable {
	t.Helper()
	cfg := config.DefaultDetectorConfig()
	registry, err := NewSignatureTable(&cfg)
	require.NoError(t, err)
	return registry.(*SignatureTable)
}

func TestDefaultTableSelectors(t *testing.T) {
	table := newDefaultTable(t)

	tests := []struct {
		selector string
		riskType entity.RiskType
		severity entity.Severity
	}{
		{"f2fde38b", entity.RiskOwnershipTransfer, entity.SeverityHigh},
		{"715018a6", entity.RiskRenounceOwnership, entity.SeverityLow},
		{"44337ea1", entity.RiskBlacklist, entity.SeverityHigh},
		{"f9f92be4", entity.RiskBlacklist, entity.SeverityHigh},
		{"e43252d7", entity.RiskWhitelist, entity.SeverityMedium},
		{"8456cb59", entity.RiskPause, entity.SeverityMedium},
		{"41c0e1b5", entity.RiskSelfDestruct, entity.SeverityHigh},
		{"83197ef0", entity.RiskSelfDestruct, entity.SeverityHigh},
		{"3659cfe6", entity.RiskUpgrade, entity.SeverityHigh},
		{"4f1ef286", entity.RiskUpgrade, entity.SeverityHigh},
		{"40c10f19", entity.RiskMint, entity.SeverityHigh},
		{"42966c68", entity.RiskBurn, entity.SeverityLow},
		{"69fe0e2d", entity.RiskSetFee, entity.SeverityHigh},
		{"061c82d0", entity.RiskSetFee, entity.SeverityHigh},
		{"baa2abde", entity.RiskRemoveLiquidity, entity.SeverityHigh},
		{"02751cec", entity.RiskRemoveLiquidity, entity.SeverityHigh},
		{"dd467064", entity.RiskLock, entity.SeverityMedium},
	}

	require.Len(t, table.Rules(), len(tests))
	for _, tt := range tests {
		rule, ok := table.Lookup(tt.selector)
		require.True(t, ok, tt.selector)
		assert.Equal(t, tt.riskType, rule.Type, tt.selector)
		assert.Equal(t, tt.severity, rule.Severity, tt.selector)
	}
}

func TestDefaultTableChecks(t *testing.T) {
	table := newDefaultTable(t)

	mint, ok := table.Lookup("40c10f19")
	require.True(t, ok)
	require.True(t, mint.IsGated())
	assert.Equal(t, 1, mint.Check.Index)
	assert.Equal(t, "1000000000000000000000000", mint.Check.Threshold.String())

	fee, ok := table.Lookup("69fe0e2d")
	require.True(t, ok)
	require.True(t, fee.IsGated())
	assert.Equal(t, 0, fee.Check.Threshold.Cmp(big.NewInt(1000)))

	owner, ok := table.Lookup("f2fde38b")
	require.True(t, ok)
	assert.False(t, owner.IsGated())
}

func TestLookupNormalizesSelector(t *testing.T) {
	table := newDefaultTable(t)

	_, ok := table.Lookup("0xF2FDE38B")
	assert.True(t, ok)

	_, ok = table.Lookup("a9059cbb")
	assert.False(t, ok, "plain transfer is not suspicious")
}

func TestExtraRules(t *testing.T) {
	cfg := config.DefaultDetectorConfig()
	cfg.ExtraRules = []config.RuleConfig{
		{
			Name:        "setMaxTxAmount(uint256)",
			Type:        "max_tx_limit",
			Severity:    "medium",
			Description: "Maximum transaction amount is being changed",
			Check: &config.ParamCheckConfig{
				Arg:        "amount",
				Index:      0,
				Op:         "lt",
				Threshold:  "1000",
				TokenUnits: true,
			},
		},
		{
			// replaces the built-in renounceOwnership rule
			Name:        "renounceOwnership()",
			Type:        "RENOUNCE_OWNERSHIP",
			Severity:    "MEDIUM",
			Description: "Ownership renounced",
		},
	}

	registry, err := NewSignatureTable(&cfg)
	require.NoError(t, err)

	rule, ok := registry.Lookup("ec28438a")
	require.True(t, ok)
	assert.Equal(t, entity.RiskType("MAX_TX_LIMIT"), rule.Type)
	assert.Equal(t, entity.SeverityMedium, rule.Severity)
	assert.Equal(t, entity.OpLessThan, rule.Check.Op)
	assert.Equal(t, "1000000000000000000000", rule.Check.Threshold.String())

	renounce, ok := registry.Lookup("715018a6")
	require.True(t, ok)
	assert.Equal(t, entity.SeverityMedium, renounce.Severity)

	assert.Len(t, registry.Rules(), len(newDefaultTable(t).Rules())+1)
}

func TestExtraRulesRejected(t *testing.T) {
	tests := map[string]config.RuleConfig{
		"bad severity":   {Name: "pause()", Type: "PAUSE", Severity: "CRITICAL"},
		"missing type":   {Name: "pause()", Severity: "LOW"},
		"bad signature":  {Name: "pause", Type: "PAUSE", Severity: "LOW"},
		"bad threshold":  {Name: "setFee(uint256)", Type: "SET_FEE", Severity: "HIGH", Check: &config.ParamCheckConfig{Threshold: "ten"}},
		"index too big":  {Name: "setFee(uint256)", Type: "SET_FEE", Severity: "HIGH", Check: &config.ParamCheckConfig{Index: 1, Threshold: "10"}},
		"not an integer": {Name: "blacklist(address)", Type: "BLACKLIST", Severity: "HIGH", Check: &config.ParamCheckConfig{Threshold: "10"}},
		"unknown op":     {Name: "setFee(uint256)", Type: "SET_FEE", Severity: "HIGH", Check: &config.ParamCheckConfig{Op: "ne", Threshold: "10"}},
	}

	for name, rc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultDetectorConfig()
			cfg.ExtraRules = []config.RuleConfig{rc}
			_, err := NewSignatureTable(&cfg)
			assert.Error(t, err)
		})
	}
}

func TestInvalidMintThreshold(t *testing.T) {
	cfg := config.DefaultDetectorConfig()
	cfg.MintThreshold = "lots"
	_, err := NewSignatureTable(&cfg)
	assert.ErrorIs(t, err, ErrMalformedBalance)
}
