package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// contourSchema describes a contour argument as produced by the extract tools.
func contourSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"points": map[string]interface{}{
				"type":        "array",
				"description": "Closed polygon vertices in traversal order",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"x": map[string]interface{}{"type": "integer"},
						"y": map[string]interface{}{"type": "integer"},
					},
					"required": []string{"x", "y"},
				},
			},
		},
		"required": []string{"points"},
	}
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func reloadProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
		"default":     false,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Extraction
		{
			Name:        "silhouette_extract_reference",
			Description: "Capture the reference render (CAD view as black geometry on white) and return the outer contour of its largest shape. Returns found=false when no render is available or it contains no shape.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reference_path": pathProperty("Optional path to a pre-rendered reference image. Defaults to the configured capture source."),
				},
			},
		},
		{
			Name:        "silhouette_extract_subject",
			Description: "Load a photograph and return the outer contour of its largest dark object using adaptive thresholding. Returns found=false when no object is found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the photograph"),
					"reload": reloadProperty("Re-read the file even if it was loaded before. Default false"),
				},
				"required": []string{"path"},
			},
		},

		// Comparison
		{
			Name:        "silhouette_compare",
			Description: "Score how alike two contours are using Hu moment invariants. 0 means identical; the score ignores position, size, and rotation. Returns the score, the configured threshold, and whether the score is below it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reference": contourSchema("Reference contour from silhouette_extract_reference"),
					"subject":   contourSchema("Subject contour from silhouette_extract_subject"),
				},
				"required": []string{"reference", "subject"},
			},
		},
		{
			Name:        "silhouette_overlay",
			Description: "Draw the subject contour and the reference contour, rescaled into the subject's bounding box, onto the photograph. Returns a base64 PNG or writes to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty("Absolute path to the photograph"),
					"reference":   contourSchema("Reference contour"),
					"subject":     contourSchema("Subject contour found in the photograph"),
					"output_path": pathProperty("Optional file to write the overlay to instead of returning it inline"),
					"reload":      reloadProperty("Re-read the photograph even if it was loaded before. Default false"),
				},
				"required": []string{"path", "reference", "subject"},
			},
		},

		// Pipeline
		{
			Name:        "silhouette_verify",
			Description: "Run the whole check: extract both silhouettes, compare them, and render the overlay. Returns match=true when the score is below the threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProperty("Absolute path to the photograph"),
					"reference_path": pathProperty("Optional path to a pre-rendered reference image"),
					"output_path":    pathProperty("Optional file to write the overlay to instead of returning it inline"),
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Match threshold. Defaults to the configured value",
					},
					"reload": reloadProperty("Re-read the photograph even if it was loaded before. Reference renders are always read fresh. Default false"),
				},
				"required": []string{"path"},
			},
		},

		// Diagnostics
		{
			Name:        "silhouette_mask",
			Description: "Return the binary foreground mask (white = foreground) an image produces, for tuning threshold settings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image"),
					"policy": map[string]interface{}{
						"type":        "string",
						"description": "Binarization rule: subject (adaptive, for photographs) or reference (fixed cutoff, for renders). Default subject",
						"enum":        []string{policySubject, policyReference},
						"default":     policySubject,
					},
					"output_path": pathProperty("Optional file to write the mask to instead of returning it inline"),
					"reload":      reloadProperty("Re-read the image even if it was loaded before. Default false"),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
