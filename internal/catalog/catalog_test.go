package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogShape(t *testing.T) {
	cat := Default()

	defs := cat.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, ToolGetWeather, defs[0].Name)
	assert.Equal(t, ToolCalculate, defs[1].Name)
	assert.Equal(t, ToolSearchWeb, defs[2].Name)

	tools := cat.Tools()
	require.Len(t, tools, 3)
	for _, tool := range tools {
		assert.Equal(t, "function", tool.Type)
		assert.NotEmpty(t, tool.Function.Description)
		assert.NotNil(t, tool.Function.Parameters)
	}

	// The wire shape must survive JSON encoding for the request payload.
	raw, err := json.Marshal(tools)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"required":["city"]`)
}

func TestDefinitionLookup(t *testing.T) {
	cat := Default()

	def, ok := cat.Definition(ToolCalculate)
	require.True(t, ok)
	assert.Equal(t, "Perform mathematical calculations", def.Description)

	_, ok = cat.Definition("launch_rockets")
	assert.False(t, ok)
}

func TestValidateArguments(t *testing.T) {
	cat := Default()

	tests := []struct {
		name    string
		tool    string
		args    string
		wantErr string
	}{
		{
			name: "weather with city",
			tool: ToolGetWeather,
			args: `{"city": "Tokyo"}`,
		},
		{
			name: "weather with unit",
			tool: ToolGetWeather,
			args: `{"city": "Tokyo", "unit": "celsius"}`,
		},
		{
			name:    "weather missing city",
			tool:    ToolGetWeather,
			args:    `{"unit": "celsius"}`,
			wantErr: "failed validation",
		},
		{
			name:    "weather bad unit",
			tool:    ToolGetWeather,
			args:    `{"city": "Tokyo", "unit": "kelvin"}`,
			wantErr: "failed validation",
		},
		{
			name:    "not json",
			tool:    ToolGetWeather,
			args:    `{"city": `,
			wantErr: "not valid JSON",
		},
		{
			name: "calculate",
			tool: ToolCalculate,
			args: `{"expression": "15 + 27"}`,
		},
		{
			name:    "unknown tool",
			tool:    "launch_rockets",
			args:    `{}`,
			wantErr: "unknown tool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cat.ValidateArguments(tt.tool, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMockResponses(t *testing.T) {
	cat := Default()

	weather := cat.MockResponse(ToolGetWeather)
	assert.Equal(t, 22, weather["temperature"])
	assert.Equal(t, "partly cloudy", weather["condition"])

	unknown := cat.MockResponse("launch_rockets")
	assert.Equal(t, "mock response", unknown["result"])
}

func TestMockResponseJSON(t *testing.T) {
	cat := Default()

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(cat.MockResponseJSON(ToolCalculate)), &decoded))
	assert.Equal(t, "2 + 2", decoded["expression"])
}
