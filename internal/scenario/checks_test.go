package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/transport"
)

func TestAllScenariosCanonicalOrder(t *testing.T) {
	all := All()
	require.Len(t, all, 5)

	names := make([]string, len(all))
	var weightSum float64
	for i, sc := range all {
		names[i] = sc.Name
		weightSum += sc.Weight
		assert.NotEmpty(t, sc.Description, "%s needs a description", sc.Name)
		assert.NotEmpty(t, sc.Steps, "%s needs steps", sc.Name)
	}

	assert.Equal(t, []string{
		models.ScenarioBasicToolCalling,
		models.ScenarioToolOutputReasoning,
		models.ScenarioMultiToolCalling,
		models.ScenarioJSONMode,
		models.ScenarioStreamingToolCalls,
	}, names)
	assert.InDelta(t, 1.0, weightSum, 1e-9)
}

func TestQuickSubset(t *testing.T) {
	quick := Quick()
	require.Len(t, quick, 1)
	assert.Equal(t, models.ScenarioBasicToolCalling, quick[0].Name)
}

func TestByName(t *testing.T) {
	sc, ok := ByName(models.ScenarioJSONMode)
	require.True(t, ok)
	assert.Equal(t, models.ScenarioJSONMode, sc.Name)

	_, ok = ByName("nonexistent")
	assert.False(t, ok)
}

func TestEvaluateWeatherCall(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		name       string
		resp       *transport.ChatResponse
		wantOK     bool
		wantReason string
	}{
		{
			name:       "no choices",
			resp:       &transport.ChatResponse{},
			wantReason: "No tool_calls in response",
		},
		{
			name:       "text only",
			resp:       textResponse("Sorry, no tools."),
			wantReason: "No tool_calls in response",
		},
		{
			name: "wrong tool",
			resp: toolCallResponse(transport.ToolCall{
				ID:       "call_1",
				Function: transport.FunctionCall{Name: catalog.ToolCalculate, Arguments: `{"expression": "1"}`},
			}),
			wantReason: "Expected a get_weather call",
		},
		{
			name: "unparsable arguments",
			resp: toolCallResponse(transport.ToolCall{
				ID:       "call_1",
				Function: transport.FunctionCall{Name: catalog.ToolGetWeather, Arguments: `{"city": `},
			}),
			wantReason: "not valid JSON",
		},
		{
			name: "missing city",
			resp: toolCallResponse(transport.ToolCall{
				ID:       "call_1",
				Function: transport.FunctionCall{Name: catalog.ToolGetWeather, Arguments: `{"unit": "celsius"}`},
			}),
			wantReason: "missing city",
		},
		{
			name:   "valid call",
			resp:   toolCallResponse(weatherCall()),
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := evaluateWeatherCall(cat, tt.resp)
			assert.Equal(t, tt.wantOK, v.OK)
			if !tt.wantOK {
				assert.Contains(t, v.Reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluateWeatherCallFlagsSchemaViolations(t *testing.T) {
	// A parsable city passes the scenario even when an extra argument
	// violates the schema; the violation is surfaced in the details.
	resp := toolCallResponse(transport.ToolCall{
		ID:       "call_1",
		Function: transport.FunctionCall{Name: catalog.ToolGetWeather, Arguments: `{"city": "Tokyo", "unit": "kelvin"}`},
	})

	v := evaluateWeatherCall(catalog.Default(), resp)
	require.True(t, v.OK)
	assert.Equal(t, false, v.Details["arguments_valid"])
}

func TestEvaluateJSONReply(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		name       string
		content    string
		wantOK     bool
		wantReason string
	}{
		{
			name:       "empty content",
			content:    "",
			wantReason: "No content in response",
		},
		{
			name:       "not json",
			content:    "A fictional person is Alice.",
			wantReason: "not valid JSON",
		},
		{
			name:       "missing fields",
			content:    `{"name": "Alice", "age": 30}`,
			wantReason: "missing required fields",
		},
		{
			name:       "array not object",
			content:    `["name", "age", "city"]`,
			wantReason: "missing required fields",
		},
		{
			name:    "complete object",
			content: `{"name": "Alice", "age": 30, "city": "Osaka"}`,
			wantOK:  true,
		},
		{
			name:    "fenced json",
			content: "```json\n{\"name\": \"Alice\", \"age\": 30, \"city\": \"Osaka\"}\n```",
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := evaluateJSONReply(cat, textResponse(tt.content))
			assert.Equal(t, tt.wantOK, v.OK)
			if tt.wantOK {
				assert.Equal(t, []string{"age", "city", "name"}, v.Details["json_keys"])
			} else {
				assert.Contains(t, v.Reason, tt.wantReason)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}

func TestMultiToolEvaluate(t *testing.T) {
	cat := catalog.Default()
	sc := mustScenario(t, models.ScenarioMultiToolCalling)
	evaluate := sc.Steps[0].Evaluate

	calcCall := transport.ToolCall{
		ID:       "call_2",
		Function: transport.FunctionCall{Name: catalog.ToolCalculate, Arguments: `{"expression": "15 + 27"}`},
	}

	v := evaluate(cat, toolCallResponse(weatherCall(), calcCall))
	require.True(t, v.OK)
	assert.Equal(t, 2, v.Details["tool_calls_count"])
	assert.Equal(t, []string{catalog.ToolGetWeather, catalog.ToolCalculate}, v.Details["tools_called"])

	v = evaluate(cat, toolCallResponse(weatherCall()))
	require.False(t, v.OK)
	assert.Contains(t, v.Reason, "Expected at least 2 tool_calls, got 1")

	v = evaluate(cat, toolCallResponse(weatherCall(), weatherCall()))
	require.False(t, v.OK)
	assert.Contains(t, v.Reason, "Expected a calculate call")
}

func TestScenarioRequestShapes(t *testing.T) {
	cat := catalog.Default()

	basic := mustScenario(t, models.ScenarioBasicToolCalling)
	req := basic.Steps[0].Build(cat, "m", nil)
	assert.Equal(t, weatherPrompt, req.Messages[0].Content)
	assert.Len(t, req.Tools, 3)
	assert.Equal(t, "auto", req.ToolChoice)
	assert.Equal(t, defaultTemperature, req.Temperature)
	assert.Equal(t, defaultMaxTokens, req.MaxTokens)
	assert.Nil(t, req.ResponseFormat)

	multi := mustScenario(t, models.ScenarioMultiToolCalling)
	req = multi.Steps[0].Build(cat, "m", nil)
	assert.Equal(t, multiPrompt, req.Messages[0].Content)

	jm := mustScenario(t, models.ScenarioJSONMode)
	req = jm.Steps[0].Build(cat, "m", nil)
	assert.Equal(t, jsonPrompt, req.Messages[0].Content)
	assert.Empty(t, req.Tools)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, "json_object", req.ResponseFormat.Type)

	streaming := mustScenario(t, models.ScenarioStreamingToolCalls)
	req = streaming.Steps[0].Build(cat, "m", nil)
	assert.True(t, req.Stream)
}
