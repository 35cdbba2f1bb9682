package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the microscopy image",
	}
}

// pipelineProperties returns the optional segmentation overrides shared by
// every tool that runs the pipeline, merged with extra.
func pipelineProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProperty(),
		"mode": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"r", "g", "b"},
			"description": "Channel carrying the stain. Default from config (b)",
		},
		"selem_radius": map[string]interface{}{
			"type":        "integer",
			"minimum":     1,
			"maximum":     14,
			"description": "Disk radius for the morphological opening. Default 7",
		},
		"min_area": map[string]interface{}{
			"type":        "integer",
			"minimum":     100,
			"maximum":     5000,
			"description": "Objects smaller than this many pixels are removed. Default 1000",
		},
		"min_peak_distance": map[string]interface{}{
			"type":        "integer",
			"minimum":     1,
			"description": "Minimum separation between watershed seeds. Default 40",
		},
		"watershed_trigger": map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"description": "Split merged cells only when more regions than this are found. Default 150",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size.",
			InputSchema: objectSchema(map[string]interface{}{"path": pathProperty()}, "path"),
		},
		{
			Name:        "image_channel_stats",
			Description: "Per-channel min, max, mean and standard deviation, with a suggested binarization mode. Use this to pick the stain channel before counting.",
			InputSchema: objectSchema(map[string]interface{}{"path": pathProperty()}, "path"),
		},

		// Counting
		{
			Name:        "cell_count",
			Description: "Count cells: Li threshold on the selected channel, morphological cleaning, labeling and, for crowded images, watershed splitting of merged cells. The count is added to the session results table.",
			InputSchema: objectSchema(pipelineProperties(map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name for the results table. Default \"At HHMMSS\"",
				},
				"record": map[string]interface{}{
					"type":        "boolean",
					"description": "Add the count to the results table. Default true",
					"default":     true,
				},
			}), "path"),
		},
		{
			Name:        "cell_regions",
			Description: "List every counted cell with centroid, area and size category (small, medium, large relative to the median). Large cells include a bounding box.",
			InputSchema: objectSchema(pipelineProperties(nil), "path"),
		},

		// Visualization
		{
			Name:        "cell_overlay",
			Description: "Render the final labels over the image as PNG. Centroids are lime for large, magenta for small and cyan for medium cells; large cells get a bounding box.",
			InputSchema: objectSchema(pipelineProperties(map[string]interface{}{
				"opacity": map[string]interface{}{
					"type":        "number",
					"description": "Opacity of the label colouring, 0-1. Default 0.45",
				},
				"centroids": map[string]interface{}{
					"type":        "boolean",
					"description": "Draw centroid markers. Default true",
				},
				"boxes": map[string]interface{}{
					"type":        "boolean",
					"description": "Outline large cells. Default true",
				},
				"ids": map[string]interface{}{
					"type":        "boolean",
					"description": "Write cell ids. Default true",
				},
				"output_path": map[string]interface{}{
					"type":        "string",
					"description": "Also save the overlay as PNG at this path",
				},
			}), "path"),
		},
		{
			Name:        "cell_crop",
			Description: "Crop the neighbourhood of one cell and return it as base64-encoded PNG.",
			InputSchema: objectSchema(pipelineProperties(map[string]interface{}{
				"cell_id": map[string]interface{}{
					"type":        "integer",
					"description": "Cell id as reported by cell_regions",
				},
				"padding": map[string]interface{}{
					"type":        "integer",
					"description": "Pixels added around the bounding box. Default 10",
				},
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Scale factor for the crop. Default 2.0",
				},
			}), "path", "cell_id"),
		},
		{
			Name:        "cell_stages",
			Description: "Write the thresholded mask, cleaned mask, raw labels and final labels as PNG files for inspection.",
			InputSchema: objectSchema(pipelineProperties(map[string]interface{}{
				"directory": map[string]interface{}{
					"type":        "string",
					"description": "Output directory. Default is the configured results directory",
				},
				"prefix": map[string]interface{}{
					"type":        "string",
					"description": "File name prefix. Default is the image name",
				},
			}), "path"),
		},

		// Results Table
		{
			Name:        "results_list",
			Description: "List the counts recorded in this session.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "results_save",
			Description: "Export recorded counts to an Excel workbook (.xlsx) or a CSV file (.csv). Rows are appended when the file exists.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Target .xlsx or .csv file, or a directory. Default At_YYYYMMDDHHMM.xlsx in the results directory",
				},
			}),
		},
		{
			Name:        "results_clear",
			Description: "Remove all recorded counts.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
	}
}
