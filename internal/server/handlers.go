package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/silhouette-mcp/internal/binarize"
	"github.com/ironsheep/silhouette-mcp/internal/capture"
	"github.com/ironsheep/silhouette-mcp/internal/detection"
	"github.com/ironsheep/silhouette-mcp/internal/imaging"
	"github.com/ironsheep/silhouette-mcp/internal/verify"
)

// Binarization rules accepted by silhouette_mask.
const (
	policySubject   = "subject"
	policyReference = "reference"
)

// maxCoordinate bounds the magnitude of any client-supplied reference vertex.
const maxCoordinate = 1 << 20

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "silhouette_verify").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Warn("tool failed")
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Calls the verification service
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Extraction
	case "silhouette_extract_reference":
		return s.handleExtractReference(ctx, args)
	case "silhouette_extract_subject":
		return s.handleExtractSubject(args)

	// Comparison
	case "silhouette_compare":
		return s.handleCompare(args)
	case "silhouette_overlay":
		return s.handleOverlay(args)

	// Pipeline
	case "silhouette_verify":
		return s.handleVerify(ctx, args)

	// Diagnostics
	case "silhouette_mask":
		return s.handleMask(args)

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

// serviceFor returns the service, switched to a file reference when
// referencePath is set.
func (s *Server) serviceFor(referencePath string) *verify.Service {
	if referencePath == "" {
		return s.service
	}
	return s.service.WithCapturer(capture.NewFileCapture(referencePath))
}

// loadPhoto loads a photograph, optionally dropping any cached copy first.
func (s *Server) loadPhoto(path string, reload bool) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if reload {
		s.service.Cache().Evict(path)
	}
	return s.service.Cache().Load(path)
}

// writeOrEncode saves img to outputPath when set, otherwise returns it inline.
func writeOrEncode(img image.Image, outputPath string) (*imageOutput, error) {
	if outputPath != "" {
		if err := imaging.Save(img, outputPath); err != nil {
			return nil, err
		}
		return &imageOutput{
			OutputPath: outputPath,
			Width:      img.Bounds().Dx(),
			Height:     img.Bounds().Dy(),
		}, nil
	}

	enc, err := imaging.EncodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	return &imageOutput{
		Width:  enc.Width,
		Height: enc.Height,
		Image:  enc,
	}, nil
}

// imageOutput is an image result, either written to disk or inlined.
type imageOutput struct {
	OutputPath string                `json:"output_path,omitempty"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Image      *imaging.EncodedImage `json:"image,omitempty"`
}

// === Extraction Handlers ===

type extractReferenceArgs struct {
	ReferencePath string `json:"reference_path"`
}

type contourResult struct {
	Found   bool               `json:"found"`
	Contour *detection.Contour `json:"contour,omitempty"`
}

func (s *Server) handleExtractReference(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractReferenceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := s.serviceFor(a.ReferencePath).ExtractReferenceSilhouette(ctx)
	if err != nil {
		return nil, err
	}
	return &contourResult{Found: c != nil, Contour: c}, nil
}

type extractSubjectArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

type subjectResult struct {
	contourResult
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleExtractSubject(args json.RawMessage) (interface{}, error) {
	var a extractSubjectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Reload {
		s.service.Cache().Evict(a.Path)
	}
	c, img, err := s.service.ExtractSubjectSilhouette(a.Path)
	if err != nil {
		return nil, err
	}
	return &subjectResult{
		contourResult: contourResult{Found: c != nil, Contour: c},
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
	}, nil
}

// === Comparison Handlers ===

type compareArgs struct {
	Reference *detection.Contour `json:"reference"`
	Subject   *detection.Contour `json:"subject"`
}

type compareResult struct {
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Match     bool    `json:"match"`
}

func (s *Server) handleCompare(args json.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	score, err := s.service.CompareSilhouettes(a.Reference, a.Subject)
	if err != nil {
		return nil, err
	}
	return &compareResult{
		Score:     score,
		Threshold: s.service.Threshold(),
		Match:     score < s.service.Threshold(),
	}, nil
}

type overlayArgs struct {
	Path       string             `json:"path"`
	Reference  *detection.Contour `json:"reference"`
	Subject    *detection.Contour `json:"subject"`
	OutputPath string             `json:"output_path"`
	Reload     bool               `json:"reload"`
}

type overlayResult struct {
	imageOutput
	// Fitted is false when a degenerate bounding box left the photo unannotated.
	Fitted bool `json:"fitted"`
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reference == nil || a.Subject == nil {
		return nil, fmt.Errorf("reference and subject contours are required")
	}
	if err := checkContour("reference", a.Reference, image.Rect(-maxCoordinate, -maxCoordinate, maxCoordinate, maxCoordinate)); err != nil {
		return nil, err
	}
	photo, err := s.loadPhoto(a.Path, a.Reload)
	if err != nil {
		return nil, err
	}
	// The subject was traced from this photo, so it must lie on it.
	if err := checkContour("subject", a.Subject, image.Rect(0, 0, photo.Bounds().Dx(), photo.Bounds().Dy())); err != nil {
		return nil, err
	}

	_, fitted := imaging.FitReference(*a.Reference, *a.Subject)
	out, err := writeOrEncode(s.service.RenderOverlay(photo, a.Reference, a.Subject), a.OutputPath)
	if err != nil {
		return nil, err
	}
	return &overlayResult{imageOutput: *out, Fitted: fitted}, nil
}

// checkContour rejects a contour whose bounding box leaves limit. Bounds are
// inclusive, so a vertex on the last row or column of an image passes.
func checkContour(name string, c *detection.Contour, limit image.Rectangle) error {
	b := c.Bounds()
	if b.X1 < limit.Min.X || b.Y1 < limit.Min.Y || b.X2 >= limit.Max.X || b.Y2 >= limit.Max.Y {
		return fmt.Errorf("%s contour bounds (%d,%d)-(%d,%d) fall outside %v",
			name, b.X1, b.Y1, b.X2, b.Y2, limit)
	}
	return nil
}

// === Pipeline Handlers ===

type verifyArgs struct {
	Path          string  `json:"path"`
	ReferencePath string  `json:"reference_path"`
	OutputPath    string  `json:"output_path"`
	Threshold     float64 `json:"threshold"`
	Reload        bool    `json:"reload"`
}

type verifyResult struct {
	*verify.Report
	Overlay *imageOutput `json:"overlay,omitempty"`
}

func (s *Server) handleVerify(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a verifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	// The reference render is read fresh on every call; only the photo is cached.
	if a.Reload {
		s.service.Cache().Evict(a.Path)
	}

	report, err := s.serviceFor(a.ReferencePath).WithThreshold(a.Threshold).Verify(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	result := &verifyResult{Report: report}
	if report.Overlay != nil {
		out, err := writeOrEncode(report.Overlay, a.OutputPath)
		if err != nil {
			return nil, err
		}
		result.Overlay = out
	}
	return result, nil
}

// === Diagnostic Handlers ===

type maskArgs struct {
	Path       string `json:"path"`
	Policy     string `json:"policy"`
	OutputPath string `json:"output_path"`
	Reload     bool   `json:"reload"`
}

type maskResult struct {
	imageOutput
	Policy           string `json:"policy"`
	ForegroundPixels int    `json:"foreground_pixels"`
}

func (s *Server) handleMask(args json.RawMessage) (interface{}, error) {
	var a maskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Policy == "" {
		a.Policy = policySubject
	}

	img, err := s.loadPhoto(a.Path, a.Reload)
	if err != nil {
		return nil, err
	}

	var mask *binarize.Mask
	switch a.Policy {
	case policySubject:
		mask = s.service.SubjectMask(img)
	case policyReference:
		mask = s.service.ReferenceMask(img)
	default:
		return nil, fmt.Errorf("unknown policy: %s", a.Policy)
	}

	out, err := writeOrEncode(mask.Image(), a.OutputPath)
	if err != nil {
		return nil, err
	}
	return &maskResult{imageOutput: *out, Policy: a.Policy, ForegroundPixels: mask.Count()}, nil
}
