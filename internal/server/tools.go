package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pointSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Pose Analysis
		{
			Name: "pose_analyze",
			Description: "Detect body landmarks in an image, check that both elbows are bent between 70 and 110 degrees, " +
				"and return feedback text plus the image with the landmarks marked. Returns \"No Pose Detected\" when no person is found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image (a data: URL prefix is accepted). Used when path is empty.",
					},
					"details": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return landmarks and per-joint angles as JSON. Default false",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "pose_angle",
			Description: "Compute the angle in degrees at vertex b formed by points a, b and c. Result is in [0, 180].",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": pointSchema("First ray endpoint"),
					"b": pointSchema("Vertex"),
					"c": pointSchema("Second ray endpoint"),
				},
				"required": []string{"a", "b", "c"},
			},
		},
		{
			Name:        "pose_validate",
			Description: "Judge the elbow angles of an already-detected landmark list and return the feedback report with the judged joints.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"landmarks": map[string]interface{}{
						"type":        "array",
						"description": "Landmarks as {name, x, y}. Names follow the MediaPipe pose layout (left_shoulder, left_elbow, ...)",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name":       map[string]interface{}{"type": "string"},
								"x":          map[string]interface{}{"type": "number"},
								"y":          map[string]interface{}{"type": "number"},
								"visibility": map[string]interface{}{"type": "number"},
							},
							"required": []string{"name", "x", "y"},
						},
					},
				},
				"required": []string{"landmarks"},
			},
		},

		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The image is cached for later pose_analyze calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
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
