package service

import (
	"rugpull-detector/internal/domain/entity"
)

// CallDecoder defines the interface for decoding contract call data
type CallDecoder interface {
	// Selector extracts the lowercase 4-byte function selector from hex call data
	Selector(input string) (string, error)

	// DecodeArguments decodes the argument words of input per the canonical signature
	DecodeArguments(signature string, input string) ([]any, error)
}

// SignatureRegistry defines the lookup interface over the suspicious selector table
type SignatureRegistry interface {
	// Lookup returns the rule registered for a selector
	Lookup(selector string) (*entity.SignatureRule, bool)

	// Rules returns all registered rules in table order
	Rules() []entity.SignatureRule
}
