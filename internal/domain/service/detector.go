package service

import (
	"context"

	"rugpull-detector/internal/domain/entity"
)

// RugpullDetector defines the interface for rugpull risk detection
type RugpullDetector interface {
	// Detect analyzes the trace carried by a platform request and wraps the verdict
	Detect(ctx context.Context, req *entity.DetectRequest) *entity.DetectResponse

	// Analyze runs every analysis step over a trace and merges their findings
	Analyze(trace *entity.Trace) *entity.Verdict
}
