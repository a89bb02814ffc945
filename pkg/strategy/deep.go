package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepreason/orchestrator/pkg/analysis"
	"github.com/deepreason/orchestrator/pkg/cache"
	"github.com/deepreason/orchestrator/pkg/provider"
	"github.com/deepreason/orchestrator/pkg/rpcerr"
)

// DeepStrategy favors thorough, slow analysis: full focus area in one
// long-form provider request, high default confidence. Cache, if set,
// is checked before and populated after every provider round-trip.
type DeepStrategy struct {
	Gateway *provider.Gateway
	Cache   *cache.Cache
}

const (
	deepMinTimeBudgetSeconds = 30
	deepMaxFileCount         = 50
	deepDefaultConfidence    = 0.9
)

func (d *DeepStrategy) Name() string { return "deep" }

func (d *DeepStrategy) SupportedTypes() []analysis.Type {
	return []analysis.Type{analysis.TypeDeepAnalysis, analysis.TypeCrossSystem}
}

// CanHandle implements DeepStrategy scoring table exactly:
// 0.9 for the intended deep/cross-system, non-speed-prioritized case with
// time and file count in range; 0.4 under prioritizeSpeed; 0.2 over the
// file count ceiling; 0.3 under the time budget floor.
func (d *DeepStrategy) CanHandle(req analysis.Request) float64 {
	fileCount := req.FileCount()
	supported := req.AnalysisType == analysis.TypeDeepAnalysis || req.AnalysisType == analysis.TypeCrossSystem

	if supported && req.TimeBudgetSeconds >= deepMinTimeBudgetSeconds && fileCount <= deepMaxFileCount && !req.PrioritizeSpeed {
		return 0.9
	}
	if req.PrioritizeSpeed {
		return 0.4
	}
	if fileCount > deepMaxFileCount {
		return 0.2
	}
	if req.TimeBudgetSeconds < deepMinTimeBudgetSeconds {
		return 0.3
	}
	return 0.0
}

func (d *DeepStrategy) EstimateResources(req analysis.Request) Estimate {
	fileCount := int64(req.FileCount())
	return Estimate{
		TimeMs:     int64(deepMinTimeBudgetSeconds) * 1000 * (1 + fileCount/10),
		Bytes:      fileCount * 4096,
		Confidence: deepDefaultConfidence,
	}
}

// Run synthesizes a single long-form provider request covering the full
// focusArea and returns a high-confidence result.
func (d *DeepStrategy) Run(ctx context.Context, req analysis.Request) (analysis.Result, error) {
	if d.Gateway == nil || !d.Gateway.AnyAvailable() {
		return analysis.Result{}, rpcerr.New(rpcerr.KindProviderUnavailable, "deep strategy requires an available provider")
	}

	prompt := buildDeepPrompt(req)
	key := cache.Key(d.Name(), req.Context.FocusArea.Files, prompt, "")
	if d.Cache != nil {
		if cached, ok := d.Cache.Get(key); ok {
			return cached.(analysis.Result), nil
		}
	}

	_, reply, err := d.Gateway.CompleteAny(ctx, prompt, provider.CompleteOptions{
		Timeout: req.Deadline(now()).Sub(now()),
	})
	if err != nil {
		return analysis.Result{}, err
	}

	result := analysis.Result{
		Status:    analysis.StatusSuccess,
		Reasoning: reply,
		Metadata: analysis.Metadata{
			Confidence: deepDefaultConfidence,
		},
	}
	if d.Cache != nil {
		d.Cache.Set(key, result, 0)
	}
	return result, nil
}

func buildDeepPrompt(req analysis.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Perform a deep analysis across %d files.\n", req.FileCount())
	for _, f := range req.Context.FocusArea.Files {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	for _, note := range req.Context.AttemptedApproaches {
		fmt.Fprintf(&b, "Previously attempted: %s\n", note)
	}
	return b.String()
}
