package models

// Canonical names of the capability scenarios. These appear as the test_name
// field of scenario results and as keys in the weight table.
const (
	ScenarioBasicToolCalling    = "basic_tool_calling"
	ScenarioToolOutputReasoning = "tool_output_reasoning"
	ScenarioMultiToolCalling    = "multi_tool_calling"
	ScenarioJSONMode            = "json_mode"
	ScenarioStreamingToolCalls  = "streaming_tool_calls"
)
