// Package dispatch implements the tool dispatcher: the fixed tool catalog,
// external<->internal field-name mapping, schema validation,
// correlation-id assignment, and routing into the Router,
// ConversationScheduler, TournamentEngine, and HealthMonitor. The wire
// transport itself lives elsewhere; this package is the boundary a
// transport loop calls into with one already-decoded tool call, keeping
// transport concerns separate from routing and domain logic.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/deepreason/orchestrator/pkg/analysis"
	"github.com/deepreason/orchestrator/pkg/convo"
	"github.com/deepreason/orchestrator/pkg/health"
	"github.com/deepreason/orchestrator/pkg/rpcerr"
	"github.com/deepreason/orchestrator/pkg/strategy"
	"github.com/deepreason/orchestrator/pkg/tournament"
)

// Dispatcher wires the fixed tool catalog to the core components.
type Dispatcher struct {
	Router     *strategy.Router
	Scheduler  *convo.Scheduler
	Tournament *tournament.Engine
	Health     *health.Monitor
}

// Dispatch decodes one already-JSON-parsed tool call, validates it,
// assigns a correlationId if the caller omitted one, and routes it to the
// appropriate component. params is the tool's snake_case wire payload;
// the returned value is the internal-shaped result ready for the
// transport layer to re-externalize.
func (d *Dispatcher) Dispatch(ctx context.Context, tool ToolName, params map[string]any) (any, error) {
	if !isKnownTool(tool) {
		return nil, rpcerr.New(rpcerr.KindInvalidInput, "unknown tool: "+string(tool))
	}

	correlationID := getStringOpt(params, "correlationId", "")
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	result, err := d.route(ctx, tool, params, correlationID)
	if err != nil {
		if rerr, ok := err.(*rpcerr.Error); ok {
			return nil, rerr.WithCorrelationID(correlationID)
		}
		var inner *rpcerr.Error
		if errors.As(err, &inner) {
			return nil, rpcerr.Wrap(inner.Kind, err).WithCorrelationID(correlationID)
		}
		return nil, rpcerr.Wrap(rpcerr.KindInternal, err).WithCorrelationID(correlationID)
	}
	return result, nil
}

func (d *Dispatcher) route(ctx context.Context, tool ToolName, params map[string]any, correlationID string) (any, error) {
	switch tool {
	case ToolEscalateAnalysis:
		return d.escalateAnalysis(ctx, params, correlationID)
	case ToolTraceExecutionPath:
		return d.traceExecutionPath(ctx, params, correlationID)
	case ToolHypothesisTest:
		return d.hypothesisTest(ctx, params, correlationID)
	case ToolCrossSystemImpact:
		return d.crossSystemImpact(ctx, params, correlationID)
	case ToolPerformanceBottleneck:
		return d.performanceBottleneck(ctx, params, correlationID)
	case ToolStartConversation:
		return d.startConversation(ctx, params)
	case ToolContinueConversation:
		return d.continueConversation(ctx, params)
	case ToolFinalizeConversation:
		return d.finalizeConversation(ctx, params)
	case ToolGetConversationStatus:
		return d.getConversationStatus(params)
	case ToolRunHypothesisTournament:
		return d.runHypothesisTournament(ctx, params)
	case ToolHealthCheck:
		return d.healthCheck(ctx, params)
	case ToolHealthSummary:
		return d.healthSummary(ctx)
	default:
		return nil, rpcerr.New(rpcerr.KindInvalidInput, "unknown tool: "+string(tool))
	}
}

// buildRequest assembles an analysis.Request from a decoded Context plus
// the request-level fields shared by every one-shot analysis tool.
func buildRequest(ctxRecord analysis.Context, analysisType analysis.Type, params map[string]any, correlationID string) analysis.Request {
	return analysis.Request{
		Context:           ctxRecord,
		AnalysisType:      analysisType,
		DepthLevel:        getIntOpt(params, "depthLevel", 3),
		TimeBudgetSeconds: getIntOpt(params, "timeBudgetSeconds", analysis.DefaultAnalysisBudgetSeconds),
		PrioritizeSpeed:   getBoolOpt(params, "prioritizeSpeed", false),
		CorrelationID:     correlationID,
	}
}

func (d *Dispatcher) escalateAnalysis(ctx context.Context, params map[string]any, correlationID string) (analysis.Result, error) {
	ext, err := getMap(params, "analysisContext")
	if err != nil {
		return analysis.Result{}, err
	}
	ctxRecord, err := DecodeContext(ext)
	if err != nil {
		return analysis.Result{}, err
	}
	analysisType, err := getString(params, "analysisType")
	if err != nil {
		return analysis.Result{}, err
	}
	req := buildRequest(ctxRecord, analysis.Type(analysisType), params, correlationID)
	if err := analysis.ValidateRequest(req); err != nil {
		return analysis.Result{}, err
	}
	return d.Router.Route(ctx, req)
}

func (d *Dispatcher) traceExecutionPath(ctx context.Context, params map[string]any, correlationID string) (analysis.Result, error) {
	epRaw, err := getMap(params, "entryPoint")
	if err != nil {
		return analysis.Result{}, err
	}
	file, err := getString(epRaw, "file")
	if err != nil {
		return analysis.Result{}, err
	}
	ep := analysis.EntryPoint{
		File:         file,
		Line:         getIntOpt(epRaw, "line", 0),
		FunctionName: getStringOpt(epRaw, "functionName", ""),
	}
	ctxRecord := analysis.Context{FocusArea: analysis.FocusArea{EntryPoints: []analysis.EntryPoint{ep}}}
	req := buildRequest(ctxRecord, analysis.TypeExecutionTrace, params, correlationID)
	req.DepthLevel = getIntOpt(params, "maxDepth", req.DepthLevel)
	if err := analysis.ValidateRequest(req); err != nil {
		return analysis.Result{}, err
	}
	return d.Router.Route(ctx, req)
}

func (d *Dispatcher) hypothesisTest(ctx context.Context, params map[string]any, correlationID string) (analysis.Result, error) {
	hypothesis, err := getString(params, "hypothesis")
	if err != nil {
		return analysis.Result{}, err
	}
	scope, err := getMap(params, "codeScope")
	if err != nil {
		return analysis.Result{}, err
	}
	ctxRecord := analysis.Context{
		FocusArea:           focusAreaFromScope(scope),
		AttemptedApproaches: []string{hypothesis},
	}
	req := buildRequest(ctxRecord, analysis.TypeHypothesisTest, params, correlationID)
	if err := analysis.ValidateRequest(req); err != nil {
		return analysis.Result{}, err
	}
	return d.Router.Route(ctx, req)
}

func (d *Dispatcher) crossSystemImpact(ctx context.Context, params map[string]any, correlationID string) (analysis.Result, error) {
	scope, err := getMap(params, "changeScope")
	if err != nil {
		return analysis.Result{}, err
	}
	ctxRecord := analysis.Context{FocusArea: focusAreaFromScope(scope)}
	req := buildRequest(ctxRecord, analysis.TypeCrossSystem, params, correlationID)
	if err := analysis.ValidateRequest(req); err != nil {
		return analysis.Result{}, err
	}
	return d.Router.Route(ctx, req)
}

func (d *Dispatcher) performanceBottleneck(ctx context.Context, params map[string]any, correlationID string) (analysis.Result, error) {
	codePath, err := getMap(params, "codePath")
	if err != nil {
		return analysis.Result{}, err
	}
	epRaw := getMapOpt(codePath, "entryPoint")
	var eps []analysis.EntryPoint
	if file, ok := epRaw["file"].(string); ok && file != "" {
		eps = append(eps, analysis.EntryPoint{
			File:         file,
			Line:         getIntOpt(epRaw, "line", 0),
			FunctionName: getStringOpt(epRaw, "functionName", ""),
		})
	}
	ctxRecord := analysis.Context{FocusArea: analysis.FocusArea{EntryPoints: eps}}
	req := buildRequest(ctxRecord, analysis.TypePerformance, params, correlationID)
	req.DepthLevel = getIntOpt(params, "profileDepth", req.DepthLevel)
	if err := analysis.ValidateRequest(req); err != nil {
		return analysis.Result{}, err
	}
	return d.Router.Route(ctx, req)
}

func focusAreaFromScope(scope map[string]any) analysis.FocusArea {
	return analysis.FocusArea{
		Files:        getStringSlice(scope, "files"),
		ServiceNames: getStringSlice(scope, "serviceNames"),
	}
}

// StartConversationResult is start_conversation's tool result.
type StartConversationResult struct {
	SessionID string     `json:"sessionId"`
	Turn      *convo.Turn `json:"turn,omitempty"`
}

func (d *Dispatcher) startConversation(ctx context.Context, params map[string]any) (StartConversationResult, error) {
	ext, err := getMap(params, "analysisContext")
	if err != nil {
		return StartConversationResult{}, err
	}
	ctxRecord, err := DecodeContext(ext)
	if err != nil {
		return StartConversationResult{}, err
	}

	sessionID, err := d.Scheduler.Create(ctxRecord)
	if err != nil {
		return StartConversationResult{}, err
	}

	initialQuestion := getStringOpt(params, "initialQuestion", "")
	if initialQuestion == "" {
		return StartConversationResult{SessionID: sessionID}, nil
	}

	turn, err := d.Scheduler.Continue(ctx, sessionID, initialQuestion)
	if err != nil {
		return StartConversationResult{SessionID: sessionID}, err
	}
	return StartConversationResult{SessionID: sessionID, Turn: &turn}, nil
}

func (d *Dispatcher) continueConversation(ctx context.Context, params map[string]any) (convo.Turn, error) {
	sessionID, err := getString(params, "sessionId")
	if err != nil {
		return convo.Turn{}, err
	}
	message, err := getString(params, "message")
	if err != nil {
		return convo.Turn{}, err
	}
	return d.Scheduler.Continue(ctx, sessionID, message)
}

func (d *Dispatcher) finalizeConversation(ctx context.Context, params map[string]any) (analysis.Result, error) {
	sessionID, err := getString(params, "sessionId")
	if err != nil {
		return analysis.Result{}, err
	}
	format := getStringOpt(params, "summaryFormat", "detailed")
	return d.Scheduler.Finalize(ctx, sessionID, format)
}

func (d *Dispatcher) getConversationStatus(params map[string]any) (convo.Snapshot, error) {
	sessionID, err := getString(params, "sessionId")
	if err != nil {
		return convo.Snapshot{}, err
	}
	return d.Scheduler.Status(sessionID)
}

func (d *Dispatcher) runHypothesisTournament(ctx context.Context, params map[string]any) (tournament.Result, error) {
	rawHyps, err := getSlice(params, "hypotheses")
	if err != nil {
		return tournament.Result{}, err
	}
	hyps := make([]tournament.Hypothesis, 0, len(rawHyps))
	for _, raw := range rawHyps {
		m, ok := raw.(map[string]any)
		if !ok {
			return tournament.Result{}, rpcerr.New(rpcerr.KindInvalidInput, "each hypothesis must be an object")
		}
		id, err := getString(m, "id")
		if err != nil {
			return tournament.Result{}, err
		}
		hyps = append(hyps, tournament.Hypothesis{
			ID:          id,
			Description: getStringOpt(m, "description", ""),
			Type:        tournament.Type(getStringOpt(m, "type", "behavior")),
			Confidence:  getIntOpt(m, "confidence", 3),
		})
	}

	testScope := getStringOpt(params, "testScope", "")
	cfgRaw := getMapOpt(params, "tournamentConfig")
	cfg := tournament.Config{
		MaxParallel: getIntOpt(cfgRaw, "maxParallel", 0),
	}
	if secs := getIntOpt(cfgRaw, "perMatchTimeoutSec", 0); secs > 0 {
		cfg.PerMatchTimeout = time.Duration(secs) * time.Second
	}

	return d.Tournament.Run(ctx, hyps, testScope, cfg)
}

// healthCheck runs a single named check, or the full registry when
// checkName is omitted, matching the wire schema's checkName? marker.
func (d *Dispatcher) healthCheck(ctx context.Context, params map[string]any) (any, error) {
	name := getStringOpt(params, "checkName", "")
	if name == "" {
		return d.Health.ExecuteAll(ctx), nil
	}
	result, err := d.Health.ExecuteOne(ctx, name)
	if err != nil {
		return health.Result{}, rpcerr.Wrap(rpcerr.KindNotFound, err)
	}
	return result, nil
}

func (d *Dispatcher) healthSummary(ctx context.Context) (health.Summary, error) {
	return d.Health.ExecuteAll(ctx), nil
}
