package scenario

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/transport"
)

// Request defaults shared by every scenario.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000

	weatherPrompt = "What's the weather in Tokyo?"
	multiPrompt   = "Check the weather in Tokyo and calculate 15 + 27"
	jsonPrompt    = "Return a JSON object with 'name', 'age', and 'city' fields for a fictional person"
)

// personSchemaJSON describes the reply expected from the JSON-mode scenario.
// Field presence is what matters; types are left to the model.
const personSchemaJSON = `{
	"type": "object",
	"required": ["name", "age", "city"]
}`

var personSchema = mustCompileSchema(personSchemaJSON, "person.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// toolRequest builds the standard tool-calling request.
func toolRequest(cat *catalog.Set, model, prompt string) transport.ChatRequest {
	return transport.ChatRequest{
		Model:       model,
		Messages:    []transport.ChatMessage{{Role: "user", Content: prompt}},
		Tools:       cat.Tools(),
		ToolChoice:  "auto",
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
}

func findCall(calls []transport.ToolCall, name string) (transport.ToolCall, bool) {
	for _, call := range calls {
		if call.Function.Name == name {
			return call, true
		}
	}
	return transport.ToolCall{}, false
}

func callNames(calls []transport.ToolCall) []string {
	names := make([]string, 0, len(calls))
	for _, call := range calls {
		names = append(names, call.Function.Name)
	}
	return names
}

func basicToolCalling() Scenario {
	name := models.ScenarioBasicToolCalling
	return Scenario{
		Name:        name,
		Description: "Single tool call with parsable arguments",
		Weight:      weightOf(name),
		Steps: []Step{{
			Build: func(cat *catalog.Set, model string, _ *transport.ChatResponse) transport.ChatRequest {
				return toolRequest(cat, model, weatherPrompt)
			},
			Evaluate: evaluateWeatherCall,
		}},
	}
}

// evaluateWeatherCall passes when the response carries a weather tool call
// whose arguments parse and name a city.
func evaluateWeatherCall(cat *catalog.Set, resp *transport.ChatResponse) Verdict {
	calls := resp.FirstToolCalls()
	if len(calls) == 0 {
		return fail("No tool_calls in response")
	}

	call, ok := findCall(calls, catalog.ToolGetWeather)
	if !ok {
		return fail("Expected a %s call, got %v", catalog.ToolGetWeather, callNames(calls))
	}

	var args struct {
		City string `json:"city"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return fail("Tool arguments are not valid JSON: %v", err)
	}
	if strings.TrimSpace(args.City) == "" {
		return fail("Tool arguments missing city")
	}

	return pass(map[string]any{
		"tool_calls_count": len(calls),
		"arguments_valid":  cat.ValidateArguments(call.Function.Name, call.Function.Arguments) == nil,
	})
}

func toolOutputReasoning() Scenario {
	name := models.ScenarioToolOutputReasoning
	return Scenario{
		Name:        name,
		Description: "Reason over a tool result and answer in prose",
		Weight:      weightOf(name),
		Steps: []Step{
			{
				Build: func(cat *catalog.Set, model string, _ *transport.ChatResponse) transport.ChatRequest {
					return toolRequest(cat, model, weatherPrompt)
				},
				Evaluate: func(_ *catalog.Set, resp *transport.ChatResponse) Verdict {
					if len(resp.FirstToolCalls()) == 0 {
						return fail("No tool_calls in first response")
					}
					return pass(nil)
				},
			},
			{
				Build: func(cat *catalog.Set, model string, prior *transport.ChatResponse) transport.ChatRequest {
					call := prior.FirstToolCalls()[0]
					req := toolRequest(cat, model, weatherPrompt)
					req.Messages = []transport.ChatMessage{
						{Role: "user", Content: weatherPrompt},
						{Role: "assistant", ToolCalls: []transport.ToolCall{call}},
						{Role: "tool", Content: cat.MockResponseJSON(call.Function.Name), ToolCallID: call.ID},
					}
					return req
				},
				Evaluate: func(_ *catalog.Set, resp *transport.ChatResponse) Verdict {
					msg := resp.FirstMessage()
					if msg == nil || strings.TrimSpace(msg.Content) == "" {
						return fail("No final content after tool output")
					}
					if len(msg.ToolCalls) > 0 {
						return fail("Model requested more tool calls instead of answering")
					}
					return pass(map[string]any{"final_content_length": len(msg.Content)})
				},
			},
		},
	}
}

func multiToolCalling() Scenario {
	name := models.ScenarioMultiToolCalling
	return Scenario{
		Name:        name,
		Description: "Two tool calls from a single prompt",
		Weight:      weightOf(name),
		Steps: []Step{{
			Build: func(cat *catalog.Set, model string, _ *transport.ChatResponse) transport.ChatRequest {
				return toolRequest(cat, model, multiPrompt)
			},
			Evaluate: func(_ *catalog.Set, resp *transport.ChatResponse) Verdict {
				calls := resp.FirstToolCalls()
				if len(calls) < 2 {
					return fail("Expected at least 2 tool_calls, got %d", len(calls))
				}

				names := callNames(calls)
				if _, ok := findCall(calls, catalog.ToolGetWeather); !ok {
					return fail("Expected a %s call, got %v", catalog.ToolGetWeather, names)
				}
				if _, ok := findCall(calls, catalog.ToolCalculate); !ok {
					return fail("Expected a %s call, got %v", catalog.ToolCalculate, names)
				}

				return pass(map[string]any{
					"tool_calls_count": len(calls),
					"tools_called":     names,
				})
			},
		}},
	}
}

func jsonMode() Scenario {
	name := models.ScenarioJSONMode
	return Scenario{
		Name:        name,
		Description: "Structured JSON output without tools",
		Weight:      weightOf(name),
		Steps: []Step{{
			Build: func(_ *catalog.Set, model string, _ *transport.ChatResponse) transport.ChatRequest {
				return transport.ChatRequest{
					Model:          model,
					Messages:       []transport.ChatMessage{{Role: "user", Content: jsonPrompt}},
					Temperature:    defaultTemperature,
					MaxTokens:      defaultMaxTokens,
					ResponseFormat: &transport.ResponseFormat{Type: "json_object"},
				}
			},
			Evaluate: evaluateJSONReply,
		}},
	}
}

// evaluateJSONReply judges the JSON-mode response. A reply that fails to
// parse fails the scenario; it is the behavior under test, not an internal
// fault.
func evaluateJSONReply(_ *catalog.Set, resp *transport.ChatResponse) Verdict {
	content := stripFences(resp.FirstContent())
	if content == "" {
		return fail("No content in response")
	}

	var decoded any
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return fail("Response is not valid JSON: %v", err)
	}
	if err := personSchema.Validate(decoded); err != nil {
		return fail("JSON missing required fields: %v", err)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return fail("Response JSON is not an object")
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return pass(map[string]any{"json_keys": keys})
}

// stripFences removes a Markdown code fence wrapper, which many models add
// around JSON even when asked not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func streamingToolCalls() Scenario {
	name := models.ScenarioStreamingToolCalls
	return Scenario{
		Name:        name,
		Description: "Tool call reconstructed from a streamed response",
		Weight:      weightOf(name),
		Steps: []Step{{
			Build: func(cat *catalog.Set, model string, _ *transport.ChatResponse) transport.ChatRequest {
				req := toolRequest(cat, model, weatherPrompt)
				req.Stream = true
				return req
			},
			Evaluate: func(_ *catalog.Set, resp *transport.ChatResponse) Verdict {
				if resp.StreamChunks == 0 {
					return fail("No chunks received from stream")
				}

				calls := resp.FirstToolCalls()
				if len(calls) == 0 {
					return fail("No tool_calls in streamed response")
				}
				if _, ok := findCall(calls, catalog.ToolGetWeather); !ok {
					return fail("Expected a %s call, got %v", catalog.ToolGetWeather, callNames(calls))
				}

				return pass(map[string]any{
					"chunks_received":  resp.StreamChunks,
					"tool_calls_count": len(calls),
				})
			},
		}},
	}
}
