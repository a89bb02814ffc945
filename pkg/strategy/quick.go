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

// QuickStrategy favors fast, narrow analysis: first 10 files, one
// short-form provider request, lower default confidence. Cache, if set,
// is checked before and populated after every provider round-trip.
type QuickStrategy struct {
	Gateway *provider.Gateway
	Cache   *cache.Cache
}

const (
	quickMaxTimeBudgetSeconds = 10
	quickMaxFileCount         = 10
	quickDefaultConfidence    = 0.7
)

func (q *QuickStrategy) Name() string { return "quick" }

func (q *QuickStrategy) SupportedTypes() []analysis.Type {
	return []analysis.Type{analysis.TypeQuickScan}
}

// CanHandle implements QuickStrategy scoring table: 0.9
// under prioritizeSpeed, else 0.8 within the time budget ceiling, else
// 0.1 once file count exceeds the cap.
func (q *QuickStrategy) CanHandle(req analysis.Request) float64 {
	if req.PrioritizeSpeed {
		return 0.9
	}
	if req.TimeBudgetSeconds <= quickMaxTimeBudgetSeconds {
		return 0.8
	}
	if req.FileCount() > quickMaxFileCount {
		return 0.1
	}
	return 0.0
}

func (q *QuickStrategy) EstimateResources(req analysis.Request) Estimate {
	fileCount := int64(req.FileCount())
	if fileCount > quickMaxFileCount {
		fileCount = quickMaxFileCount
	}
	return Estimate{
		TimeMs:     int64(quickMaxTimeBudgetSeconds) * 1000,
		Bytes:      fileCount * 1024,
		Confidence: quickDefaultConfidence,
	}
}

// Run truncates files to the first 10 and issues a single short-form
// provider request.
func (q *QuickStrategy) Run(ctx context.Context, req analysis.Request) (analysis.Result, error) {
	if q.Gateway == nil || !q.Gateway.AnyAvailable() {
		return analysis.Result{}, rpcerr.New(rpcerr.KindProviderUnavailable, "quick strategy requires an available provider")
	}

	files := req.Context.FocusArea.Files
	if len(files) > quickMaxFileCount {
		files = files[:quickMaxFileCount]
	}

	prompt := buildQuickPrompt(files)
	key := cache.Key(q.Name(), files, prompt, "")
	if q.Cache != nil {
		if cached, ok := q.Cache.Get(key); ok {
			return cached.(analysis.Result), nil
		}
	}

	_, reply, err := q.Gateway.CompleteAny(ctx, prompt, provider.CompleteOptions{
		Timeout: req.Deadline(now()).Sub(now()),
	})
	if err != nil {
		return analysis.Result{}, err
	}

	result := analysis.Result{
		Status:    analysis.StatusSuccess,
		Reasoning: reply,
		Metadata: analysis.Metadata{
			Confidence: quickDefaultConfidence,
		},
	}
	if q.Cache != nil {
		q.Cache.Set(key, result, 0)
	}
	return result, nil
}

func buildQuickPrompt(files []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Perform a quick scan across %d files.\n", len(files))
	for _, f := range files {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	return b.String()
}
