package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// detectionProperties are the per-call overrides accepted by calibrate_detect.
// Keys match the JSON tags of config.Overrides.
func detectionProperties() map[string]interface{} {
	return map[string]interface{}{
		"white_threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Luminance cutoff (0-255). Pixels at or above it count as white. Default 200",
			"default":     200,
			"minimum":     0,
			"maximum":     255,
		},
		"circle_min_area": map[string]interface{}{
			"type":        "number",
			"description": "Smallest accepted circle area in square pixels (inclusive). Default 100",
			"default":     100,
		},
		"circle_max_area": map[string]interface{}{
			"type":        "number",
			"description": "Largest accepted circle area in square pixels (inclusive). Default 5000",
			"default":     5000,
		},
		"circularity_threshold": map[string]interface{}{
			"type":        "number",
			"description": "Circularity 4πA/P² must exceed this value (0-1). Default 0.7",
			"default":     0.7,
		},
		"dpi": map[string]interface{}{
			"type":        "number",
			"description": "Output resolution used in the scale formula. Default 96",
			"default":     96,
		},
		"reference_diameter_mm": map[string]interface{}{
			"type":        "number",
			"description": "Physical diameter of the reference circle in millimetres. Default 100",
			"default":     100,
		},
		"roi_fraction": map[string]interface{}{
			"type":        "number",
			"description": "Share of the image width, from the right edge, searched for the circle. Default 0.3",
			"default":     0.3,
		},
		"max_output_dimension": map[string]interface{}{
			"type":        "integer",
			"description": "Largest allowed side of the rescaled image in pixels. Default 8192",
			"default":     8192,
		},
		"show_roi": map[string]interface{}{
			"type":        "boolean",
			"description": "Outline the search region on the annotated image. Default false",
			"default":     false,
		},
		"annotation_color": map[string]interface{}{
			"type":        "string",
			"description": "Hex color for the circle annotations. Default #FF0000",
			"default":     "#FF0000",
		},
		"roi_color": map[string]interface{}{
			"type":        "string",
			"description": "Hex color for the ROI outline. Default #FFFF00",
			"default":     "#FFFF00",
		},
		"backend": map[string]interface{}{
			"type":        "string",
			"description": "Vision backend",
			"enum":        []string{"native", "gocv"},
			"default":     "native",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	detect := detectionProperties()
	detect["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the photograph. Omit to reuse the image from calibrate_load",
	}
	detect["output_format"] = map[string]interface{}{
		"type":        "string",
		"description": "Encoding of returned images",
		"enum":        []string{"png", "jpeg", "webp"},
		"default":     "png",
	}
	detect["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional file to write the output image to. The extension selects the format",
	}
	detect["include_image"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the output image as base64. Default true",
		"default":     true,
	}
	detect["include_mask"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the cleaned binary mask as base64. Default false",
		"default":     false,
	}

	return []Tool{
		{
			Name:        "calibrate_load",
			Description: "Load a photograph and return its dimensions and format. Sets it as the session image for later calibrate_detect calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Read the file again even if it was loaded before. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "calibrate_detect",
			Description: "Find the reference white circle in the right part of the image and derive the pixel-to-millimetre scale. " +
				"Returns the detection, the scale factor and the annotated image, rescaled by the scale factor when a circle is found.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detect,
			},
		},
		{
			Name:        "calibrate_config",
			Description: "Return the default detection and calibration settings.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "calibrate_status",
			Description: "Report the session image and whether a calibration run is in progress.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
