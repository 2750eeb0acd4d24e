package server

import (
	"context"
	"errors"
	"fmt"
	"image"

	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/pose-tools-mcp/internal/imaging"
	"github.com/ironsheep/pose-tools-mcp/internal/pipeline"
	"github.com/ironsheep/pose-tools-mcp/internal/pose"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pose_analyze", "image_load").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments jsoniter.RawMessage `json:"arguments"`
}

// Content is one item of an MCP tool result.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// contentResult is implemented by tool results that build their own content
// list instead of being rendered as a single JSON text item.
type contentResult interface {
	Content() []Content
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// Most tools are wrapped in MCP's content format as one JSON text item:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// pose_analyze instead returns its feedback as text followed by the annotated
// image. Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	var content []Content
	if cr, ok := result.(contentResult); ok {
		content = cr.Content()
	} else {
		text, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
		}
		content = []Content{{Type: "text", Text: string(text)}}
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args jsoniter.RawMessage) (interface{}, error) {
	switch name {
	// Pose Analysis
	case "pose_analyze":
		return s.handlePoseAnalyze(ctx, args)
	case "pose_angle":
		return s.handlePoseAngle(args)
	case "pose_validate":
		return s.handlePoseValidate(args)

	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments; a missing arguments object is
// treated as empty.
func unmarshalArgs(args jsoniter.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Pose Analysis Handlers ===

type poseAnalyzeArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
	Details     bool   `json:"details"`
}

// AnalyzeDetails is the optional JSON part of a pose_analyze result.
type AnalyzeDetails struct {
	Detected  bool              `json:"detected"`
	Judgments []pose.Judgment   `json:"judgments,omitempty"`
	Landmarks *pose.LandmarkSet `json:"landmarks,omitempty"`
	ElapsedMS int64             `json:"elapsed_ms"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
}

// AnalyzeResult is the pose_analyze result.
type AnalyzeResult struct {
	Feedback string
	Image    *imaging.EncodedImage
	Details  *AnalyzeDetails
}

// Content renders the feedback text, the annotated PNG and, if requested,
// the JSON details.
func (r *AnalyzeResult) Content() []Content {
	content := []Content{
		{Type: "text", Text: r.Feedback},
		{Type: "image", Data: r.Image.ImageBase64, MimeType: r.Image.MimeType},
	}
	if r.Details != nil {
		content = append(content, Content{Type: "text", Text: mustMarshalJSON(r.Details)})
	}
	return content
}

func (s *Server) handlePoseAnalyze(ctx context.Context, args jsoniter.RawMessage) (interface{}, error) {
	if s.pipeline == nil {
		return nil, errors.New("pose analysis is not configured")
	}

	var a poseAnalyzeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		img image.Image
		err error
	)
	switch {
	case a.Path != "":
		img, err = s.cache.Load(a.Path)
	case a.ImageBase64 != "":
		img, err = imaging.DecodeBase64(a.ImageBase64)
	default:
		return nil, errors.New("either path or image_base64 is required")
	}
	if err != nil {
		return nil, err
	}

	res, err := s.pipeline.Process(ctx, img)
	if err != nil {
		return nil, err
	}

	encoded, err := imaging.EncodePNG(res.Image)
	if err != nil {
		return nil, err
	}

	out := &AnalyzeResult{
		Feedback: res.Feedback,
		Image:    encoded,
	}
	if a.Details {
		out.Details = &AnalyzeDetails{
			Detected:  res.Detected,
			Judgments: res.Judgments,
			Landmarks: res.Landmarks,
			ElapsedMS: res.Elapsed.Milliseconds(),
			Width:     encoded.Width,
			Height:    encoded.Height,
		}
	}
	return out, nil
}

type poseAngleArgs struct {
	A *pose.Point2D `json:"a"`
	B *pose.Point2D `json:"b"`
	C *pose.Point2D `json:"c"`
}

// AngleResult is the pose_angle result.
type AngleResult struct {
	Degrees float64 `json:"degrees"`
}

func (s *Server) handlePoseAngle(args jsoniter.RawMessage) (interface{}, error) {
	var a poseAngleArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.A == nil || a.B == nil || a.C == nil {
		return nil, errors.New("points a, b and c are required")
	}

	deg, err := pose.Angle(*a.A, *a.B, *a.C)
	if err != nil {
		return nil, err
	}
	return &AngleResult{Degrees: deg}, nil
}

type poseValidateArgs struct {
	Landmarks []pose.Landmark `json:"landmarks"`
}

// ValidateResult is the pose_validate result.
type ValidateResult struct {
	Feedback  string          `json:"feedback"`
	Judgments []pose.Judgment `json:"judgments"`
	Joints    []string        `json:"joints"` // checked joints, in report order
}

func (s *Server) handlePoseValidate(args jsoniter.RawMessage) (interface{}, error) {
	var a poseValidateArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	v := pose.NewValidator()
	if s.pipeline != nil {
		v = s.pipeline.Validator()
	}
	names := jointNames(v)

	if len(a.Landmarks) == 0 {
		return &ValidateResult{Feedback: pipeline.NoPoseFeedback, Joints: names}, nil
	}

	set, err := pose.FromLandmarks(a.Landmarks)
	if err != nil {
		return nil, err
	}

	judgments, err := v.Validate(set)
	if err != nil {
		return nil, err
	}
	return &ValidateResult{
		Feedback:  pose.Report(judgments),
		Judgments: judgments,
		Joints:    names,
	}, nil
}

func jointNames(v *pose.Validator) []string {
	joints := v.Joints()
	names := make([]string, len(joints))
	for i, j := range joints {
		names[i] = j.Name
	}
	return names
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args jsoniter.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args jsoniter.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
