// Package analysis holds the normalized request/response data model shared
// by the strategy router, conversation scheduler, and tournament engine.
// Types here are the internal (camelCase-field) shape; dispatch is
// responsible for translating the external snake_case envelope into these.
package analysis

import "time"

// Severity is the caller-reported severity of a Finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Type is the requested analysis mode.
type Type string

const (
	TypeExecutionTrace  Type = "execution_trace"
	TypeCrossSystem     Type = "cross_system"
	TypePerformance     Type = "performance"
	TypeHypothesisTest  Type = "hypothesis_test"
	TypeQuickScan       Type = "quick_scan"
	TypeDeepAnalysis    Type = "deep_analysis"
)

// Status is the outcome of an analysis run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// EntryPoint names a concrete location execution starts from.
type EntryPoint struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	FunctionName string `json:"functionName,omitempty"`
}

// Location names a concrete file/line a Finding pertains to.
type Location struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	FunctionName string `json:"functionName,omitempty"`
}

// FocusArea scopes an analysis to a set of files and entry points.
type FocusArea struct {
	Files          []string     `json:"files"`
	EntryPoints    []EntryPoint `json:"entryPoints"`
	ServiceNames   []string     `json:"serviceNames,omitempty"`
	SearchPatterns []string     `json:"searchPatterns,omitempty"`
}

// Finding is one caller-supplied or strategy-produced observation.
type Finding struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Location    Location `json:"location"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence"`
}

// Context is the normalized request payload (AnalysisContext).
type Context struct {
	AttemptedApproaches    []string  `json:"attemptedApproaches"`
	PartialFindings        []Finding `json:"partialFindings"`
	StuckPoints            []string  `json:"stuckPoints"`
	FocusArea              FocusArea `json:"focusArea"`
	AnalysisBudgetRemaining int      `json:"analysisBudgetRemaining"`
}

// DefaultAnalysisBudgetSeconds is applied when a Context omits the field.
const DefaultAnalysisBudgetSeconds = 60

// Request is the full AnalysisRequest envelope handed to the Router.
type Request struct {
	Context          Context `json:"context"`
	AnalysisType     Type    `json:"analysisType"`
	DepthLevel       int     `json:"depthLevel"`
	TimeBudgetSeconds int    `json:"timeBudgetSeconds"`
	PrioritizeSpeed  bool    `json:"prioritizeSpeed"`
	CorrelationID    string  `json:"correlationId"`
}

// FileCount returns the number of files in scope, used by strategy scoring.
func (r Request) FileCount() int {
	return len(r.Context.FocusArea.Files)
}

// Deadline computes the effective deadline for this request from now.
func (r Request) Deadline(now time.Time) time.Time {
	return now.Add(time.Duration(r.TimeBudgetSeconds) * time.Second)
}

// Findings is the categorized output bucket of an AnalysisResult.
type Findings struct {
	RootCauses             []Finding `json:"rootCauses"`
	ExecutionPaths         []Finding `json:"executionPaths"`
	PerformanceBottlenecks []Finding `json:"performanceBottlenecks"`
	CrossSystemImpacts     []Finding `json:"crossSystemImpacts"`
}

// Metadata carries the reporting details of a Result.
type Metadata struct {
	Strategy   string  `json:"strategy"`
	DurationMs int64   `json:"durationMs"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// Result is the AnalysisResult returned by a Strategy run.
type Result struct {
	Status          Status   `json:"status"`
	Findings        Findings `json:"findings"`
	Recommendations []string `json:"recommendations"`
	Reasoning       string   `json:"reasoning"`
	Metadata        Metadata `json:"metadata"`
}

// MinPartialConfidence is the floor above which a non-empty partial result
// is preferred to an outright failure.
const MinPartialConfidence = 0.3

// IsUsablePartial reports whether r qualifies as a preferable partial result.
func (r Result) IsUsablePartial() bool {
	nonEmpty := len(r.Findings.RootCauses) > 0 ||
		len(r.Findings.ExecutionPaths) > 0 ||
		len(r.Findings.PerformanceBottlenecks) > 0 ||
		len(r.Findings.CrossSystemImpacts) > 0
	return nonEmpty && r.Metadata.Confidence >= MinPartialConfidence
}
