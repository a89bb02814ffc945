package dispatch

// ToolName identifies one entry in the fixed tool catalog.
type ToolName string

const (
	ToolEscalateAnalysis       ToolName = "escalate_analysis"
	ToolTraceExecutionPath     ToolName = "trace_execution_path"
	ToolHypothesisTest         ToolName = "hypothesis_test"
	ToolCrossSystemImpact      ToolName = "cross_system_impact"
	ToolPerformanceBottleneck  ToolName = "performance_bottleneck"
	ToolStartConversation      ToolName = "start_conversation"
	ToolContinueConversation   ToolName = "continue_conversation"
	ToolFinalizeConversation   ToolName = "finalize_conversation"
	ToolGetConversationStatus  ToolName = "get_conversation_status"
	ToolRunHypothesisTournament ToolName = "run_hypothesis_tournament"
	ToolHealthCheck            ToolName = "health_check"
	ToolHealthSummary          ToolName = "health_summary"
)

// toolNames is the fixed registry in a stable order, used to validate an
// incoming tool name and to advertise the catalog.
var toolNames = []ToolName{
	ToolEscalateAnalysis,
	ToolTraceExecutionPath,
	ToolHypothesisTest,
	ToolCrossSystemImpact,
	ToolPerformanceBottleneck,
	ToolStartConversation,
	ToolContinueConversation,
	ToolFinalizeConversation,
	ToolGetConversationStatus,
	ToolRunHypothesisTournament,
	ToolHealthCheck,
	ToolHealthSummary,
}

// ToolNames returns the fixed tool catalog in registration order.
func ToolNames() []ToolName {
	out := make([]ToolName, len(toolNames))
	copy(out, toolNames)
	return out
}

func isKnownTool(name ToolName) bool {
	for _, t := range toolNames {
		if t == name {
			return true
		}
	}
	return false
}
