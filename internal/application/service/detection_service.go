package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"rugpull-detector/internal/domain/entity"
	"rugpull-detector/internal/domain/service"
	"rugpull-detector/internal/infrastructure/blockchain"
	"rugpull-detector/internal/infrastructure/config"
	"rugpull-detector/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// Analysis step names, reported in error messages and metrics
const (
	StepSignatureMatcher       = "signature-matcher"
	StepPatternCorrelator      = "pattern-correlator"
	StepOwnershipConcentration = "ownership-concentration"
	StepBalanceChange          = "balance-change"
)

const (
	noRisksMessage     = "No rugpull risks detected"
	risksHeader        = "Potential rugpull risks detected:"
	analysisErrorLabel = "Error analyzing transaction"
)

var errStepPanicked = errors.New("analysis step panicked")

// VerdictObserver receives every verdict the detector produces
type VerdictObserver interface {
	ObserveVerdict(verdict *entity.Verdict, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveVerdict(*entity.Verdict, time.Duration) {}

// DetectionService implements RugpullDetector as a single pass over isolated analysis steps
type DetectionService struct {
	registry service.SignatureRegistry
	decoder  service.CallDecoder
	observer VerdictObserver
	logger   *logger.Logger

	decimals               int32
	concentrationThreshold *big.Int // percent
	balanceDropThreshold   *big.Int // fixed-point units
}

// stepFailure records an analysis step that did not complete
type stepFailure struct {
	step string
	err  error
}

// NewDetectionService creates a new detection service
func NewDetectionService(
	registry service.SignatureRegistry,
	decoder service.CallDecoder,
	cfg *config.DetectorConfig,
	observer VerdictObserver,
	logger *logger.Logger,
) (service.RugpullDetector, error) {
	balanceDrop, err := blockchain.ParseUnits(cfg.BalanceDropThreshold, cfg.TokenDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid balance drop threshold: %w", err)
	}
	if cfg.ConcentrationThresholdPercent <= 0 || cfg.ConcentrationThresholdPercent > 100 {
		return nil, fmt.Errorf("concentration threshold must be within (0, 100], got %d", cfg.ConcentrationThresholdPercent)
	}
	if observer == nil {
		observer = nopObserver{}
	}

	return &DetectionService{
		registry:               registry,
		decoder:                decoder,
		observer:               observer,
		logger:                 logger.WithComponent("rugpull-detector"),
		decimals:               cfg.TokenDecimals,
		concentrationThreshold: big.NewInt(cfg.ConcentrationThresholdPercent),
		balanceDropThreshold:   balanceDrop,
	}, nil
}

// Detect analyzes the trace carried by a platform request and wraps the verdict
func (s *DetectionService) Detect(ctx context.Context, req *entity.DetectRequest) *entity.DetectResponse {
	if req == nil {
		return &entity.DetectResponse{
			DetectionInfo: entity.DetectionInfo{
				Error:   true,
				Message: analysisErrorLabel + ": empty request",
			},
		}
	}

	log := s.logger.WithTransaction(req.ChainID, req.TxHash)
	verdict := s.Analyze(&req.Trace)

	log.Info("Transaction analyzed",
		zap.Bool("detected", verdict.Detected),
		zap.Bool("error", verdict.Error),
		zap.Int("findings", len(verdict.Findings)),
		zap.Strings("failed_steps", verdict.FailedSteps))

	return &entity.DetectResponse{
		Request:       *req,
		DetectionInfo: verdict.ToDetectionInfo(),
	}
}

// Analyze runs every analysis step over a trace and merges their findings.
// A failing step is reported in the verdict without discarding the others.
func (s *DetectionService) Analyze(trace *entity.Trace) *entity.Verdict {
	start := time.Now()
	if trace == nil {
		trace = &entity.Trace{}
	}

	var (
		findings []entity.Finding
		failures []stepFailure
		matches  []signatureMatch
	)

	steps := []struct {
		name string
		run  func() ([]entity.Finding, error)
	}{
		{StepSignatureMatcher, func() ([]entity.Finding, error) {
			var stepFindings []entity.Finding
			matches, stepFindings = s.matchSignatures(trace)
			return stepFindings, nil
		}},
		{StepPatternCorrelator, func() ([]entity.Finding, error) {
			return correlatePatterns(matches), nil
		}},
		{StepOwnershipConcentration, func() ([]entity.Finding, error) {
			return s.analyzeConcentration(trace)
		}},
		{StepBalanceChange, func() ([]entity.Finding, error) {
			return s.analyzeBalanceChanges(trace)
		}},
	}

	for _, step := range steps {
		stepFindings, err := runStep(step.run)
		if err != nil {
			s.logger.Warn("Analysis step failed",
				zap.String("step", step.name),
				zap.String("tx_hash", trace.TransactionHash),
				zap.Error(err))
			failures = append(failures, stepFailure{step: step.name, err: err})
			continue
		}
		findings = append(findings, stepFindings...)
	}

	verdict := &entity.Verdict{
		Detected: entity.HasHighSeverity(findings),
		Error:    len(failures) > 0,
		Message:  buildMessage(findings, failures),
		Findings: findings,
	}
	for _, f := range failures {
		verdict.FailedSteps = append(verdict.FailedSteps, f.step)
	}

	s.observer.ObserveVerdict(verdict, time.Since(start))
	return verdict
}

// runStep executes one analysis step, converting a panic into an error
func runStep(fn func() ([]entity.Finding, error)) (findings []entity.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = fmt.Errorf("%w: %v", errStepPanicked, r)
		}
	}()
	return fn()
}

// buildMessage summarizes findings and step failures for the platform
func buildMessage(findings []entity.Finding, failures []stepFailure) string {
	if len(findings) == 0 && len(failures) == 0 {
		return noRisksMessage
	}

	var b strings.Builder
	if len(failures) > 0 {
		b.WriteString(analysisErrorLabel)
		b.WriteString(": ")
		for i, f := range failures {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s: %v", f.step, f.err)
		}
	}

	if len(findings) == 0 {
		return b.String()
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(risksHeader)
	for _, f := range findings {
		fmt.Fprintf(&b, "\n- [%s] %s: %s", f.Severity, f.Type, f.Description)
	}
	return b.String()
}
