// Package catalog defines the fixed set of callable tools advertised to every
// model under test, together with canned outputs used to synthesize tool-role
// messages. Nothing in the catalog executes for real; the canned outputs exist
// so the harness can hand a plausible result back to the model.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/toolgauge/toolgauge/internal/transport"
)

// Names of the catalog tools.
const (
	ToolGetWeather = "get_weather"
	ToolCalculate  = "calculate"
	ToolSearchWeb  = "search_web"
)

// Definition describes one callable tool: its name, what it claims to do, and
// a JSON Schema for its arguments.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Set is an immutable tool catalog. It is built once at process start and
// shared read-only by every scenario execution.
type Set struct {
	defs    []Definition
	schemas map[string]*jsonschema.Schema
	mocks   map[string]map[string]any
}

var defaultDefinitions = []Definition{
	{
		Name:        ToolGetWeather,
		Description: "Get the current weather for a city",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{
					"type":        "string",
					"description": "The name of the city",
				},
				"unit": map[string]any{
					"type":        "string",
					"enum":        []any{"celsius", "fahrenheit"},
					"description": "Temperature unit",
				},
			},
			"required": []any{"city"},
		},
	},
	{
		Name:        ToolCalculate,
		Description: "Perform mathematical calculations",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "Mathematical expression to evaluate (e.g., '2 + 2')",
				},
			},
			"required": []any{"expression"},
		},
	},
	{
		Name:        ToolSearchWeb,
		Description: "Search the web for information",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query",
				},
				"num_results": map[string]any{
					"type":        "integer",
					"description": "Number of results to return",
					"default":     5,
				},
			},
			"required": []any{"query"},
		},
	},
}

var defaultMocks = map[string]map[string]any{
	ToolGetWeather: {
		"temperature": 22,
		"condition":   "partly cloudy",
		"humidity":    65,
		"wind_speed":  10,
	},
	ToolCalculate: {
		"result":     4,
		"expression": "2 + 2",
	},
	ToolSearchWeb: {
		"results": []any{
			map[string]any{"title": "Result 1", "url": "https://example.com/1", "snippet": "Snippet 1"},
			map[string]any{"title": "Result 2", "url": "https://example.com/2", "snippet": "Snippet 2"},
		},
	},
}

var defaultSet = mustBuild(defaultDefinitions, defaultMocks)

// Default returns the catalog advertised during capability runs.
func Default() *Set { return defaultSet }

// mustBuild compiles every tool's parameter schema, panicking on a malformed
// definition. The catalog is process-start state; a bad schema is a bug, not
// a runtime condition.
func mustBuild(defs []Definition, mocks map[string]map[string]any) *Set {
	s := &Set{
		defs:    defs,
		schemas: make(map[string]*jsonschema.Schema, len(defs)),
		mocks:   mocks,
	}
	for _, def := range defs {
		s.schemas[def.Name] = mustCompileParameters(def)
	}
	return s
}

func mustCompileParameters(def Definition) *jsonschema.Schema {
	// Round-trip through JSON so the compiler sees plain decoded values.
	raw, err := json.Marshal(def.Parameters)
	if err != nil {
		panic(fmt.Sprintf("encoding %s parameters: %v", def.Name, err))
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		panic(fmt.Sprintf("decoding %s parameters: %v", def.Name, err))
	}

	name := def.Name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("adding %s resource: %v", def.Name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compiling %s schema: %v", def.Name, err))
	}
	return sch
}

// Definitions returns the tool definitions in catalog order.
func (s *Set) Definitions() []Definition {
	out := make([]Definition, len(s.defs))
	copy(out, s.defs)
	return out
}

// Definition returns the named tool, if present.
func (s *Set) Definition(name string) (Definition, bool) {
	for _, def := range s.defs {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Tools renders the catalog in the request wire shape.
func (s *Set) Tools() []transport.Tool {
	out := make([]transport.Tool, 0, len(s.defs))
	for _, def := range s.defs {
		out = append(out, transport.Tool{
			Type: "function",
			Function: transport.ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}

// ValidateArguments checks a tool call's JSON-encoded arguments against the
// tool's parameter schema. An unknown tool name is an error.
func (s *Set) ValidateArguments(tool string, argsJSON string) error {
	sch, ok := s.schemas[tool]
	if !ok {
		return fmt.Errorf("unknown tool %q", tool)
	}

	var args any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return fmt.Errorf("arguments for %s are not valid JSON: %w", tool, err)
	}
	if err := sch.Validate(args); err != nil {
		return fmt.Errorf("arguments for %s failed validation: %w", tool, err)
	}
	return nil
}

// MockResponse returns the canned output for a tool. Unknown tools get a
// generic placeholder so a model inventing a tool name still receives a
// well-formed tool message.
func (s *Set) MockResponse(tool string) map[string]any {
	if m, ok := s.mocks[tool]; ok {
		return m
	}
	return map[string]any{"result": "mock response"}
}

// MockResponseJSON returns the canned output serialized for a tool-role
// message body.
func (s *Set) MockResponseJSON(tool string) string {
	raw, err := json.Marshal(s.MockResponse(tool))
	if err != nil {
		// Canned values are static and always marshal.
		panic(fmt.Sprintf("encoding mock response for %s: %v", tool, err))
	}
	return string(raw)
}
