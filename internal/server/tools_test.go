package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolByName(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return Tool{}
}

func TestGetToolDefinitions(t *testing.T) {
	expectedTools := []string{
		"silhouette_extract_reference",
		"silhouette_extract_subject",
		"silhouette_compare",
		"silhouette_overlay",
		"silhouette_verify",
		"silhouette_mask",
	}

	var names []string
	for _, tool := range GetToolDefinitions() {
		names = append(names, tool.Name)
	}

	assert.ElementsMatch(t, expectedTools, names)
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Name)
			assert.NotEmpty(t, tool.Description)
			require.NotNil(t, tool.InputSchema)
			assert.Equal(t, "object", tool.InputSchema["type"])
			assert.NotNil(t, tool.InputSchema["properties"])
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
	}{
		{"silhouette_extract_subject", []string{"path"}},
		{"silhouette_compare", []string{"reference", "subject"}},
		{"silhouette_overlay", []string{"path", "reference", "subject"}},
		{"silhouette_verify", []string{"path"}},
		{"silhouette_mask", []string{"path"}},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			required, ok := toolByName(t, tt.tool).InputSchema["required"].([]string)
			require.True(t, ok, "'required' should be a string slice")
			assert.ElementsMatch(t, tt.required, required)
		})
	}
}

func TestToolDefinitions_ExtractReferenceHasNoRequired(t *testing.T) {
	_, ok := toolByName(t, "silhouette_extract_reference").InputSchema["required"]
	assert.False(t, ok)
}

func TestToolDefinitions_MaskPolicies(t *testing.T) {
	props := toolByName(t, "silhouette_mask").InputSchema["properties"].(map[string]interface{})
	policy := props["policy"].(map[string]interface{})

	assert.Equal(t, []string{"subject", "reference"}, policy["enum"])
	assert.Equal(t, "subject", policy["default"])
}

func TestToolDefinitions_Reload(t *testing.T) {
	for _, name := range []string{
		"silhouette_extract_subject",
		"silhouette_overlay",
		"silhouette_verify",
		"silhouette_mask",
	} {
		t.Run(name, func(t *testing.T) {
			props := toolByName(t, name).InputSchema["properties"].(map[string]interface{})
			reload, ok := props["reload"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "boolean", reload["type"])
			assert.Equal(t, false, reload["default"])
		})
	}
}
