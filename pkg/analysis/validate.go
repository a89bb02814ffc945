package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deepreason/orchestrator/pkg/rpcerr"
)

// Field limits, kept as named constants rather than magic numbers,
// matching this module's config validator style.
const (
	MaxAttemptedApproaches  = 100
	MaxNoteLength           = 2000
	MaxPartialFindings      = 50
	MaxStuckPoints          = 100
	MaxPathLength           = 255
)

var (
	angleBracePattern = regexp.MustCompile(`[<>{}]`)
	pathCharPattern   = regexp.MustCompile(`^[A-Za-z0-9._\-/]+$`)

	validSeverities = map[Severity]bool{
		SeverityLow: true, SeverityMedium: true, SeverityHigh: true, SeverityCritical: true,
	}
	validTypes = map[Type]bool{
		TypeExecutionTrace: true, TypeCrossSystem: true, TypePerformance: true,
		TypeHypothesisTest: true, TypeQuickScan: true, TypeDeepAnalysis: true,
	}
)

// ValidatePath enforces path-safety rule: length, allowed
// character set, and no ".." traversal segments.
func ValidatePath(path string) error {
	if len(path) == 0 || len(path) > MaxPathLength {
		return rpcerr.New(rpcerr.KindInvalidInput, fmt.Sprintf("path length must be 1..%d, got %d", MaxPathLength, len(path)))
	}
	if strings.Contains(path, "..") {
		return rpcerr.New(rpcerr.KindPathUnsafe, fmt.Sprintf("path %q contains a parent-directory traversal segment", path))
	}
	if !pathCharPattern.MatchString(path) {
		return rpcerr.New(rpcerr.KindPathUnsafe, fmt.Sprintf("path %q contains characters outside [A-Za-z0-9._-/]", path))
	}
	return nil
}

func validateNote(note string) error {
	if len(note) == 0 || len(note) > MaxNoteLength {
		return rpcerr.New(rpcerr.KindInvalidInput, fmt.Sprintf("note length must be 1..%d, got %d", MaxNoteLength, len(note)))
	}
	if angleBracePattern.MatchString(note) {
		return rpcerr.New(rpcerr.KindInvalidInput, "note must not contain angle brackets or braces")
	}
	return nil
}

// ValidateContext validates every field of a Context, returning the
// first violation found (fail-fast, like rcconfig's Config.Validate).
func ValidateContext(c Context) error {
	if len(c.AttemptedApproaches) > MaxAttemptedApproaches {
		return rpcerr.New(rpcerr.KindInvalidInput, fmt.Sprintf("attemptedApproaches exceeds max of %d", MaxAttemptedApproaches))
	}
	for i, note := range c.AttemptedApproaches {
		if err := validateNote(note); err != nil {
			return fmt.Errorf("attemptedApproaches[%d]: %w", i, err)
		}
	}

	if len(c.PartialFindings) > MaxPartialFindings {
		return rpcerr.New(rpcerr.KindInvalidInput, fmt.Sprintf("partialFindings exceeds max of %d", MaxPartialFindings))
	}
	for i, f := range c.PartialFindings {
		if err := validateFinding(f); err != nil {
			return fmt.Errorf("partialFindings[%d]: %w", i, err)
		}
	}

	if len(c.StuckPoints) > MaxStuckPoints {
		return rpcerr.New(rpcerr.KindInvalidInput, fmt.Sprintf("stuckPoints exceeds max of %d", MaxStuckPoints))
	}
	for i, note := range c.StuckPoints {
		if err := validateNote(note); err != nil {
			return fmt.Errorf("stuckPoints[%d]: %w", i, err)
		}
	}

	if err := validateFocusArea(c.FocusArea); err != nil {
		return err
	}

	if c.AnalysisBudgetRemaining < 0 {
		return rpcerr.New(rpcerr.KindInvalidInput, "analysisBudgetRemaining must be non-negative")
	}

	return nil
}

func validateFocusArea(fa FocusArea) error {
	for i, f := range fa.Files {
		if err := ValidatePath(f); err != nil {
			return fmt.Errorf("focusArea.files[%d]: %w", i, err)
		}
	}
	for i, ep := range fa.EntryPoints {
		if err := ValidatePath(ep.File); err != nil {
			return fmt.Errorf("focusArea.entryPoints[%d].file: %w", i, err)
		}
		if ep.Line < 0 {
			return rpcerr.New(rpcerr.KindInvalidInput, fmt.Sprintf("focusArea.entryPoints[%d].line must be non-negative", i))
		}
	}
	return nil
}

func validateFinding(f Finding) error {
	if !validSeverities[f.Severity] {
		return rpcerr.New(rpcerr.KindInvalidInput, fmt.Sprintf("invalid severity %q", f.Severity))
	}
	if err := ValidatePath(f.Location.File); err != nil {
		return fmt.Errorf("location.file: %w", err)
	}
	if f.Description == "" {
		return rpcerr.New(rpcerr.KindInvalidInput, "finding description must not be empty")
	}
	return nil
}

// ValidateRequest validates an entire AnalysisRequest: its Context plus the
// request-level enum/range fields.
func ValidateRequest(r Request) error {
	if err := ValidateContext(r.Context); err != nil {
		return err
	}
	if !validTypes[r.AnalysisType] {
		return rpcerr.New(rpcerr.KindInvalidInput, fmt.Sprintf("invalid analysisType %q", r.AnalysisType))
	}
	if r.DepthLevel < 1 || r.DepthLevel > 5 {
		return rpcerr.New(rpcerr.KindInvalidInput, fmt.Sprintf("depthLevel must be 1..5, got %d", r.DepthLevel))
	}
	if r.TimeBudgetSeconds < 0 {
		return rpcerr.New(rpcerr.KindInvalidInput, "timeBudgetSeconds must be non-negative")
	}
	return nil
}
