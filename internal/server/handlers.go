package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/cell-counter-mcp/internal/imaging"
	"github.com/ironsheep/cell-counter-mcp/internal/overlay"
	"github.com/ironsheep/cell-counter-mcp/internal/results"
	"github.com/ironsheep/cell-counter-mcp/internal/segment"
)

// errInvalidArgs marks argument problems so they map to -32602.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "cell_count").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return -32602; other tool failures return -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	log := s.log.WithField("tool", params.Name)
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("tool failed")
		if errors.Is(err, errInvalidArgs) || errors.Is(err, segment.ErrInvalidParameter) ||
			errors.Is(err, results.ErrUnsupportedFormat) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	log.WithField("elapsed", time.Since(start).String()).Debug("tool finished")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_channel_stats":
		return s.handleChannelStats(args)

	// Counting
	case "cell_count":
		return s.handleCellCount(args)
	case "cell_regions":
		return s.handleCellRegions(args)

	// Visualization
	case "cell_overlay":
		return s.handleCellOverlay(args)
	case "cell_crop":
		return s.handleCellCrop(args)
	case "cell_stages":
		return s.handleCellStages(args)

	// Results Table
	case "results_list":
		return s.handleResultsList(args)
	case "results_save":
		return s.handleResultsSave(args)
	case "results_clear":
		return s.handleResultsClear(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

func requirePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return nil
}

// pipelineArgs holds optional per-call overrides of the configured
// segmentation parameters.
type pipelineArgs struct {
	Path             string  `json:"path"`
	Mode             *string `json:"mode"`
	SelemRadius      *int    `json:"selem_radius"`
	MinArea          *int    `json:"min_area"`
	MinPeakDistance  *int    `json:"min_peak_distance"`
	WatershedTrigger *int    `json:"watershed_trigger"`
}

// params merges the overrides into base.
func (a pipelineArgs) params(base segment.Params) segment.Params {
	if a.Mode != nil {
		base.Mode = segment.Mode(*a.Mode)
	}
	if a.SelemRadius != nil {
		base.SelemRadius = *a.SelemRadius
	}
	if a.MinArea != nil {
		base.MinArea = *a.MinArea
	}
	if a.MinPeakDistance != nil {
		base.MinPeakDistance = *a.MinPeakDistance
	}
	if a.WatershedTrigger != nil {
		base.WatershedTrigger = *a.WatershedTrigger
	}
	return base
}

// runPipeline counts the image named by a with the merged parameters.
func (s *Server) runPipeline(a pipelineArgs) (*segment.Result, segment.Params, error) {
	if err := requirePath(a.Path); err != nil {
		return nil, segment.Params{}, err
	}
	p := a.params(s.cfg.PipelineParams())
	if err := p.Validate(); err != nil {
		return nil, p, err
	}
	img, err := s.cache.LoadChannels(a.Path)
	if err != nil {
		return nil, p, err
	}
	res, err := s.pipeline.Run(img, p)
	if err != nil {
		return nil, p, err
	}
	s.log.WithFields(logrus.Fields{
		"path":       a.Path,
		"cell_count": res.CellCount,
	}).Debug("pipeline run")
	return res, p, nil
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleChannelStats(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.LoadChannels(a.Path)
	if err != nil {
		return nil, err
	}
	if img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	return imaging.ChannelStatsOf(img), nil
}

// === Counting Handlers ===

type cellCountArgs struct {
	pipelineArgs
	Name   string `json:"name"`
	Record *bool  `json:"record"`
}

// CountResult is the cell_count response.
type CountResult struct {
	Path             string                   `json:"path"`
	Name             string                   `json:"name,omitempty"`
	CellCount        int                      `json:"cell_count"`
	RawCount         int                      `json:"raw_count"`
	MedianSize       float64                  `json:"median_size"`
	HasMedian        bool                     `json:"has_median"`
	Threshold        float64                  `json:"threshold"`
	WatershedApplied bool                     `json:"watershed_applied"`
	Split            segment.SplitStats       `json:"split"`
	Categories       map[segment.Category]int `json:"categories"`
	Areas            segment.AreaStats        `json:"areas"`
	Params           segment.Params           `json:"params"`
	Recorded         bool                     `json:"recorded"`
}

func (s *Server) handleCellCount(args json.RawMessage) (interface{}, error) {
	var a cellCountArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, p, err := s.runPipeline(a.pipelineArgs)
	if err != nil {
		return nil, err
	}

	out := &CountResult{
		Path:             a.Path,
		CellCount:        res.CellCount,
		RawCount:         res.RawCount,
		MedianSize:       res.MedianSize,
		HasMedian:        res.HasMedian,
		Threshold:        res.Threshold,
		WatershedApplied: res.WatershedApplied,
		Split:            res.Split,
		Categories:       segment.CategoryCounts(res.Markers()),
		Areas:            segment.SummarizeAreas(res.Regions()),
		Params:           p,
	}
	if a.Record == nil || *a.Record {
		rec := s.results.Add(results.Record{
			Name:       a.Name,
			CellCount:  res.CellCount,
			MedianSize: res.MedianSize,
		})
		out.Name = rec.Name
		out.Recorded = true
	}
	return out, nil
}

// RegionsResult is the cell_regions response.
type RegionsResult struct {
	CellCount  int                  `json:"cell_count"`
	MedianSize float64              `json:"median_size"`
	HasMedian  bool                 `json:"has_median"`
	Cells      []segment.CellMarker `json:"cells"`
}

func (s *Server) handleCellRegions(args json.RawMessage) (interface{}, error) {
	var a pipelineArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, _, err := s.runPipeline(a)
	if err != nil {
		return nil, err
	}
	cells := res.Markers()
	if cells == nil {
		cells = []segment.CellMarker{}
	}
	return &RegionsResult{
		CellCount:  res.CellCount,
		MedianSize: res.MedianSize,
		HasMedian:  res.HasMedian,
		Cells:      cells,
	}, nil
}

// === Visualization Handlers ===

type cellOverlayArgs struct {
	pipelineArgs
	Opacity    *float64 `json:"opacity"`
	Centroids  *bool    `json:"centroids"`
	Boxes      *bool    `json:"boxes"`
	IDs        *bool    `json:"ids"`
	OutputPath string   `json:"output_path"`
}

// OverlayResult is the cell_overlay response.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CellCount   int    `json:"cell_count"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	SavedPath   string `json:"saved_path,omitempty"`
}

func (s *Server) handleCellOverlay(args json.RawMessage) (interface{}, error) {
	var a cellOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts := overlay.DefaultOptions()
	if a.Opacity != nil {
		if *a.Opacity < 0 || *a.Opacity > 1 {
			return nil, fmt.Errorf("%w: opacity %g outside 0-1", errInvalidArgs, *a.Opacity)
		}
		opts.Opacity = *a.Opacity
	}
	if a.Centroids != nil {
		opts.Centroids = *a.Centroids
	}
	if a.Boxes != nil {
		opts.Boxes = *a.Boxes
	}
	if a.IDs != nil {
		opts.IDs = *a.IDs
	}

	res, _, err := s.runPipeline(a.pipelineArgs)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	rendered, err := overlay.Render(src, res.Final, res.Markers(), opts)
	if err != nil {
		return nil, err
	}

	out := &OverlayResult{
		Width:     rendered.Bounds().Dx(),
		Height:    rendered.Bounds().Dy(),
		CellCount: res.CellCount,
		MimeType:  "image/png",
	}
	if a.OutputPath != "" {
		if err := overlay.SavePNG(a.OutputPath, rendered); err != nil {
			return nil, err
		}
		out.SavedPath = a.OutputPath
	}
	if out.ImageBase64, err = imaging.EncodePNG(rendered); err != nil {
		return nil, err
	}
	return out, nil
}

type cellCropArgs struct {
	pipelineArgs
	CellID  int      `json:"cell_id"`
	Padding *int     `json:"padding"`
	Scale   *float64 `json:"scale"`
}

// CellCropResult is the cell_crop response.
type CellCropResult struct {
	Cell segment.CellMarker `json:"cell"`
	imaging.CropResult
}

func (s *Server) handleCellCrop(args json.RawMessage) (interface{}, error) {
	var a cellCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	padding, scale := 10, 2.0
	if a.Padding != nil {
		padding = *a.Padding
	}
	if a.Scale != nil {
		scale = *a.Scale
	}
	if padding < 0 || scale <= 0 {
		return nil, fmt.Errorf("%w: padding must be >= 0 and scale > 0", errInvalidArgs)
	}

	res, _, err := s.runPipeline(a.pipelineArgs)
	if err != nil {
		return nil, err
	}
	var region *segment.Region
	for _, r := range res.Regions() {
		if r.ID == a.CellID {
			region = &r
			break
		}
	}
	if region == nil {
		return nil, fmt.Errorf("%w: no cell with id %d (found %d cells)", errInvalidArgs, a.CellID, res.CellCount)
	}

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	crop, err := imaging.CropCell(src, region.BBox, padding, scale)
	if err != nil {
		return nil, err
	}
	cell := segment.CellMarker{ID: region.ID, Area: region.Area, Centroid: region.Centroid}
	if res.HasMedian {
		cell.Category = segment.ClassifyArea(region.Area, res.MedianSize)
	}
	box := region.BBox
	cell.BBox = &box
	return &CellCropResult{Cell: cell, CropResult: *crop}, nil
}

type cellStagesArgs struct {
	pipelineArgs
	Directory string `json:"directory"`
	Prefix    string `json:"prefix"`
}

func (s *Server) handleCellStages(args json.RawMessage) (interface{}, error) {
	var a cellStagesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, _, err := s.runPipeline(a.pipelineArgs)
	if err != nil {
		return nil, err
	}
	dir := a.Directory
	if dir == "" {
		dir = s.cfg.Results.Directory
	}
	prefix := a.Prefix
	if prefix == "" {
		prefix = strings.TrimSuffix(filepath.Base(a.Path), filepath.Ext(a.Path))
	}
	return overlay.SaveStages(dir, prefix, res)
}

// === Results Table Handlers ===

// ResultsListResult is the results_list response.
type ResultsListResult struct {
	Count   int              `json:"count"`
	Records []results.Record `json:"records"`
}

func (s *Server) handleResultsList(args json.RawMessage) (interface{}, error) {
	records := s.results.List()
	if records == nil {
		records = []results.Record{}
	}
	return &ResultsListResult{Count: len(records), Records: records}, nil
}

type resultsSaveArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleResultsSave(args json.RawMessage) (interface{}, error) {
	var a resultsSaveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	path := a.Path
	if path == "" {
		path = filepath.Join(s.cfg.Results.Directory, results.DefaultFileName(time.Now()))
	}
	saved, err := s.results.Save(path)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"path":     saved.Path,
		"format":   saved.Format,
		"rows":     saved.Rows,
		"appended": saved.Appended,
	}).Info("results saved")
	return saved, nil
}

func (s *Server) handleResultsClear(args json.RawMessage) (interface{}, error) {
	return map[string]int{"cleared": s.results.Clear()}, nil
}
