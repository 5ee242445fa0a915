package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/circle-calibrate-mcp/internal/calibrate"
	"github.com/ironsheep/circle-calibrate-mcp/internal/config"
	"github.com/ironsheep/circle-calibrate-mcp/internal/detection"
	"github.com/ironsheep/circle-calibrate-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "calibrate_load", "calibrate_detect").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Str("tool", params.Name).Err(err).Msg("Tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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
	case "calibrate_load":
		return s.handleCalibrateLoad(args)
	case "calibrate_detect":
		return s.handleCalibrateDetect(args)
	case "calibrate_config":
		return s.base, nil
	case "calibrate_status":
		return s.handleCalibrateStatus()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Load ===

type loadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleCalibrateLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	if a.Reload {
		s.cache.Evict(a.Path)
	}
	img, info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	s.session.Load(img, a.Path)

	s.logger.Info().Str("path", a.Path).Int("width", info.Width).Int("height", info.Height).Msg("Image loaded")
	return info, nil
}

// === Detect ===

type detectArgs struct {
	config.Overrides

	Path         string `json:"path"`
	OutputFormat string `json:"output_format"`
	OutputPath   string `json:"output_path"`
	IncludeImage *bool  `json:"include_image"`
	IncludeMask  bool   `json:"include_mask"`
}

// Rect is a JSON-friendly rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func toRect(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// CircleInfo describes the accepted circle in full-image pixels.
type CircleInfo struct {
	Center      detection.PointF `json:"center"`
	Radius      float64          `json:"radius"`
	Diameter    float64          `json:"diameter"`
	Area        float64          `json:"area"`
	Circularity float64          `json:"circularity"`
	Bounds      Rect             `json:"bounds"`
}

// DetectResult is the calibrate_detect response.
type DetectResult struct {
	Source      string                 `json:"source"`
	Backend     string                 `json:"backend"`
	Status      calibrate.Status       `json:"status"`
	Circle      *CircleInfo            `json:"circle,omitempty"`
	Calibration *calibrate.Calibration `json:"calibration,omitempty"`
	ROI         Rect                   `json:"roi"`
	OutputPath  string                 `json:"output_path,omitempty"`
	Image       *imaging.EncodedImage  `json:"image,omitempty"`
	Mask        *imaging.EncodedImage  `json:"mask,omitempty"`
	Config      *config.Config         `json:"config"`
}

func (s *Server) handleCalibrateDetect(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	format, err := imaging.NormalizeFormat(a.OutputFormat)
	if err != nil {
		return nil, err
	}
	cfg := s.base.Merge(a.Overrides)

	var res *calibrate.Result
	if a.Path != "" {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		res, err = s.session.Process(img, a.Path, cfg)
		if err != nil {
			return nil, err
		}
	} else {
		res, err = s.session.Run(cfg)
		if err != nil {
			return nil, err
		}
	}
	_, source, _ := s.session.Current()

	out := &DetectResult{
		Source:      source,
		Backend:     res.Backend,
		Status:      res.Status,
		Calibration: res.Calibration,
		ROI:         toRect(res.ROI),
		Config:      cfg,
	}
	if c := res.Circle; c != nil {
		out.Circle = &CircleInfo{
			Center:      c.Center,
			Radius:      c.Radius,
			Diameter:    c.Diameter(),
			Area:        c.Area,
			Circularity: c.Circularity,
			Bounds:      toRect(c.Bounds),
		}
	}

	if a.OutputPath != "" {
		if err := imaging.Save(a.OutputPath, res.Output()); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	}
	if a.IncludeImage == nil || *a.IncludeImage {
		if out.Image, err = imaging.EncodeBase64(res.Output(), format); err != nil {
			return nil, err
		}
	}
	if a.IncludeMask {
		if out.Mask, err = imaging.EncodeBase64(res.Mask, imaging.FormatPNG); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// === Status ===

// StatusResult is the calibrate_status response.
type StatusResult struct {
	Loaded bool   `json:"loaded"`
	Source string `json:"source,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Busy   bool   `json:"busy"`
}

func (s *Server) handleCalibrateStatus() (interface{}, error) {
	out := &StatusResult{Busy: s.session.Busy()}
	if out.Busy {
		// Current would block until the run finishes
		return out, nil
	}
	if img, source, ok := s.session.Current(); ok {
		out.Loaded = true
		out.Source = source
		out.Width = img.Bounds().Dx()
		out.Height = img.Bounds().Dy()
	}
	return out, nil
}
