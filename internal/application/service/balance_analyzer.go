package service

import (
	"fmt"
	"math/big"
	"sort"

	"rugpull-detector/internal/domain/entity"
	"rugpull-detector/internal/infrastructure/blockchain"
)

var hundred = big.NewInt(100)

// analyzeConcentration approximates total supply from the pre-state and flags
// a single holder above the concentration threshold
func (s *DetectionService) analyzeConcentration(trace *entity.Trace) ([]entity.Finding, error) {
	total := new(big.Int)
	largest := new(big.Int)
	holder := ""
	found := false

	for _, address := range sortedAddresses(trace.PreState) {
		balance, err := s.balanceOf(trace.PreState, address)
		if err != nil {
			return nil, fmt.Errorf("pre-state balance of %s: %w", address, err)
		}
		total.Add(total, balance)
		if !found || balance.Cmp(largest) > 0 {
			largest.Set(balance)
			holder = address
			found = true
		}
	}

	if total.Sign() == 0 {
		return nil, nil
	}

	// largest/total*100 > threshold, kept in integers
	lhs := new(big.Int).Mul(largest, hundred)
	rhs := new(big.Int).Mul(total, s.concentrationThreshold)
	if lhs.Cmp(rhs) <= 0 {
		return nil, nil
	}

	percentage := blockchain.Percentage(largest, total)
	return []entity.Finding{{
		Type:        entity.RiskOwnershipConcentration,
		Severity:    entity.SeverityHigh,
		Description: fmt.Sprintf("Single holder owns %s%% of the observed supply", percentage),
		Details: map[string]any{
			"address":     holder,
			"percentage":  percentage,
			"balance":     blockchain.FormatUnits(largest, s.decimals),
			"totalSupply": blockchain.FormatUnits(total, s.decimals),
		},
	}}, nil
}

// analyzeBalanceChanges flags accounts whose balance dropped by more than the
// absolute threshold. Accounts missing from the post-state are treated as zero.
func (s *DetectionService) analyzeBalanceChanges(trace *entity.Trace) ([]entity.Finding, error) {
	post := make(map[string]*entity.AccountState, len(trace.PostState))
	for address, account := range trace.PostState {
		post[blockchain.NormalizeAddress(address)] = account
	}

	var findings []entity.Finding
	for _, address := range sortedAddresses(trace.PreState) {
		before, err := s.balanceOf(trace.PreState, address)
		if err != nil {
			return nil, fmt.Errorf("pre-state balance of %s: %w", address, err)
		}

		after := new(big.Int)
		if account, ok := post[blockchain.NormalizeAddress(address)]; ok && account != nil {
			after, err = blockchain.ParseUnits(account.Balance, s.decimals)
			if err != nil {
				return nil, fmt.Errorf("post-state balance of %s: %w", address, err)
			}
		}

		if before.Cmp(after) <= 0 {
			continue
		}
		decrease := new(big.Int).Sub(before, after)
		if decrease.Cmp(s.balanceDropThreshold) <= 0 {
			continue
		}

		findings = append(findings, entity.Finding{
			Type:        entity.RiskLargeBalanceDecrease,
			Severity:    entity.SeverityHigh,
			Description: fmt.Sprintf("Balance of %s decreased by %s", address, blockchain.FormatUnits(decrease, s.decimals)),
			Details: map[string]any{
				"address":     address,
				"preBalance":  blockchain.FormatUnits(before, s.decimals),
				"postBalance": blockchain.FormatUnits(after, s.decimals),
				"decrease":    blockchain.FormatUnits(decrease, s.decimals),
				"threshold":   blockchain.FormatUnits(s.balanceDropThreshold, s.decimals),
			},
		})
	}

	return findings, nil
}

// balanceOf parses the balance of address in state, a nil account counts as zero
func (s *DetectionService) balanceOf(state map[string]*entity.AccountState, address string) (*big.Int, error) {
	account := state[address]
	if account == nil {
		return new(big.Int), nil
	}
	return blockchain.ParseUnits(account.Balance, s.decimals)
}

func sortedAddresses(state map[string]*entity.AccountState) []string {
	addresses := make([]string, 0, len(state))
	for address := range state {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}
