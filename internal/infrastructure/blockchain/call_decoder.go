package blockchain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"rugpull-detector/internal/domain/service"
	"rugpull-detector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

var (
	// ErrShortCallData is returned when call data is too short to hold a selector
	ErrShortCallData = errors.New("call data too short")
	// ErrInvalidCallData is returned when call data is not valid hex
	ErrInvalidCallData = errors.New("call data is not valid hex")
	// ErrInvalidSignature is returned when a canonical signature cannot be parsed
	ErrInvalidSignature = errors.New("invalid function signature")
)

// selectorHexLength is the length of a 4-byte selector in hex characters
const selectorHexLength = 8

// CallDecoderService implements the call decoder service
type CallDecoderService struct {
	logger *logger.Logger
}

// NewCallDecoderService creates a new call decoder service
func NewCallDecoderService(logger *logger.Logger) service.CallDecoder {
	return &CallDecoderService{
		logger: logger.WithComponent("call-decoder"),
	}
}

// Selector extracts the lowercase 4-byte function selector from hex call data
func (s *CallDecoderService) Selector(input string) (string, error) {
	data := stripHexPrefix(strings.TrimSpace(input))

	if len(data) < selectorHexLength {
		return "", fmt.Errorf("%w: %d characters", ErrShortCallData, len(data))
	}

	methodSig := strings.ToLower(data[:selectorHexLength])
	if _, err := hex.DecodeString(methodSig); err != nil {
		return "", fmt.Errorf("%w: selector %q", ErrInvalidCallData, methodSig)
	}

	return methodSig, nil
}

// DecodeArguments decodes the argument words of input per the canonical signature
func (s *CallDecoderService) DecodeArguments(signature string, input string) ([]any, error) {
	_, args, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}

	data := stripHexPrefix(strings.TrimSpace(input))
	if len(data) < selectorHexLength {
		return nil, fmt.Errorf("%w: %d characters", ErrShortCallData, len(data))
	}

	raw, err := hex.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallData, err)
	}

	values, err := args.Unpack(raw[4:])
	if err != nil {
		s.logger.Debug("Failed to unpack call arguments",
			zap.String("signature", signature),
			zap.Int("data_length", len(raw)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unpack arguments of %s: %w", signature, err)
	}

	return values, nil
}

// SelectorOf computes the 4-byte selector of a canonical signature
func SelectorOf(signature string) string {
	return hex.EncodeToString(crypto.Keccak256([]byte(signature))[:4])
}

// ParseSignature splits a canonical signature such as "mint(address,uint256)"
// into its method name and ABI argument list. Tuple arguments are not supported.
func ParseSignature(signature string) (string, abi.Arguments, error) {
	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidSignature, signature)
	}

	method := signature[:open]
	inner := signature[open+1 : len(signature)-1]
	if inner == "" {
		return method, abi.Arguments{}, nil
	}

	if strings.ContainsAny(inner, "() ") {
		return "", nil, fmt.Errorf("%w: %q is not canonical", ErrInvalidSignature, signature)
	}

	typeNames := strings.Split(inner, ",")
	args := make(abi.Arguments, 0, len(typeNames))
	for i, typeName := range typeNames {
		typ, err := abi.NewType(typeName, "", nil)
		if err != nil {
			return "", nil, fmt.Errorf("%w: argument %d of %q: %v", ErrInvalidSignature, i, signature, err)
		}
		args = append(args, abi.Argument{Name: fmt.Sprintf("arg%d", i), Type: typ})
	}

	return method, args, nil
}

func stripHexPrefix(data string) string {
	if strings.HasPrefix(data, "0x") || strings.HasPrefix(data, "0X") {
		return data[2:]
	}
	return data
}
