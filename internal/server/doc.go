// Package server implements the MCP (Model Context Protocol) server for
// counting cells in microscopy images.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and get metadata
//   - image_channel_stats: Per-channel statistics and a suggested mode
//
// Counting:
//   - cell_count: Run the segmentation pipeline and record the count
//   - cell_regions: Centroid, area and size class of every cell
//
// Visualization:
//   - cell_overlay: Labels, markers and ids drawn over the image
//   - cell_crop: Zoomed crop around one cell
//   - cell_stages: Intermediate masks written as PNG files
//
// Results Table:
//   - results_list, results_save, results_clear
//
// # Parameters
//
// Every counting tool accepts mode, selem_radius, min_area,
// min_peak_distance and watershed_trigger. Omitted values come from the
// config file; given values apply to that call only.
//
// # Error Handling
//
// Bad arguments, including out-of-range pipeline parameters, return code
// -32602. Other tool failures such as unreadable files return -32000.
// Unknown methods return -32601.
package server
