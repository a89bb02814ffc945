package mcpserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deepreason/orchestrator/pkg/dispatch"
)

type toolDef struct {
	description string
	schema      mcp.ToolInputSchema
}

var obj = map[string]any{"type": "object"}

var analysisContextSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"attempted_approaches": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"partial_findings":     map[string]any{"type": "array", "items": obj},
		"stuck_description":    map[string]any{"type": "string"},
		"code_scope":           obj,
		"analysisBudgetRemaining": map[string]any{"type": "integer"},
	},
}

var toolCatalog = map[dispatch.ToolName]toolDef{
	dispatch.ToolEscalateAnalysis: {
		description: "Runs a one-shot deep or quick analysis, routed to the best-scoring strategy for the request.",
		schema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"analysisContext":  analysisContextSchema,
				"analysisType":     map[string]any{"type": "string"},
				"depthLevel":       map[string]any{"type": "integer"},
				"timeBudgetSeconds": map[string]any{"type": "integer"},
			},
			Required: []string{"analysisContext", "analysisType"},
		},
	},
	dispatch.ToolTraceExecutionPath: {
		description: "Traces execution from a named entry point to a bounded depth.",
		schema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"entryPoint":      obj,
				"maxDepth":        map[string]any{"type": "integer"},
				"includeDataFlow": map[string]any{"type": "boolean"},
			},
			Required: []string{"entryPoint"},
		},
	},
	dispatch.ToolHypothesisTest: {
		description: "Tests a single hypothesis against a scoped set of files or services.",
		schema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"hypothesis":   map[string]any{"type": "string"},
				"codeScope":    obj,
				"testApproach": map[string]any{"type": "string"},
			},
			Required: []string{"hypothesis", "codeScope"},
		},
	},
	dispatch.ToolCrossSystemImpact: {
		description: "Analyzes a change's impact across services.",
		schema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"changeScope": obj,
				"impactTypes": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			Required: []string{"changeScope"},
		},
	},
	dispatch.ToolPerformanceBottleneck: {
		description: "Analyzes a code path for performance bottlenecks.",
		schema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"codePath":     obj,
				"profileDepth": map[string]any{"type": "integer"},
			},
			Required: []string{"codePath"},
		},
	},
	dispatch.ToolStartConversation: {
		description: "Opens a multi-turn conversation session, optionally with an immediate first question.",
		schema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"analysisContext": analysisContextSchema,
				"analysisType":    map[string]any{"type": "string"},
				"initialQuestion": map[string]any{"type": "string"},
			},
			Required: []string{"analysisContext"},
		},
	},
	dispatch.ToolContinueConversation: {
		description: "Appends a caller message to a session and returns the model's reply turn.",
		schema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"sessionId":           map[string]any{"type": "string"},
				"message":             map[string]any{"type": "string"},
				"includeCodeSnippets": map[string]any{"type": "boolean"},
			},
			Required: []string{"sessionId", "message"},
		},
	},
	dispatch.ToolFinalizeConversation: {
		description: "Closes a session and synthesizes its final analysis result.",
		schema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"sessionId":     map[string]any{"type": "string"},
				"summaryFormat": map[string]any{"type": "string"},
			},
			Required: []string{"sessionId"},
		},
	},
	dispatch.ToolGetConversationStatus: {
		description: "Returns a read-only snapshot of a session's current state.",
		schema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"sessionId": map[string]any{"type": "string"}},
			Required:   []string{"sessionId"},
		},
	},
	dispatch.ToolRunHypothesisTournament: {
		description: "Runs a bracketed elimination tournament ranking 2-10 competing hypotheses.",
		schema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"hypotheses":       map[string]any{"type": "array", "items": obj},
				"testScope":        map[string]any{"type": "string"},
				"tournamentConfig": obj,
			},
			Required: []string{"hypotheses", "testScope"},
		},
	},
	dispatch.ToolHealthCheck: {
		description: "Runs a single named health check, or every registered check when checkName is omitted.",
		schema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"checkName": map[string]any{"type": "string"}},
		},
	},
	dispatch.ToolHealthSummary: {
		description: "Runs every registered health check and returns the rolled-up status.",
		schema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"includeDetails": map[string]any{"type": "boolean"}},
		},
	},
}
