package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/silhouette-mcp/internal/detection"
	"github.com/ironsheep/silhouette-mcp/internal/imaging"
	"github.com/ironsheep/silhouette-mcp/internal/verify"
)

// createSquareImage draws a square [lo,hi) x [lo,hi) of fg on a size x size bg.
func createSquareImage(t *testing.T, size, lo, hi int, bg, fg color.Color) string {
	return createRectImage(t, size, image.Rect(lo, lo, hi, hi), bg, fg)
}

// createRectImage fills r with fg on a size x size bg.
func createRectImage(t *testing.T, size int, r image.Rectangle, bg, fg color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := bg
			if image.Pt(x, y).In(r) {
				c = fg
			}
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "fixture.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	gray  = color.RGBA{140, 140, 140, 255}
)

// createRender is a 200x200 CAD-style render with an 80px square.
func createRender(t *testing.T) string {
	return createSquareImage(t, 200, 60, 140, white, black)
}

// createPhoto is a 120x120 photograph of a 40px dark square.
func createPhoto(t *testing.T) string {
	return createSquareImage(t, 120, 40, 80, gray, black)
}

// overwrite replaces dst's contents with src's, keeping dst's path.
func overwrite(t *testing.T, dst, src string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	require.NoError(t, err)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	require.NotNil(t, resp)
	return resp
}

// decodeResult unmarshals the text content of a successful tool response into v.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	content, ok := result["content"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])

	text, ok := content[0]["text"].(string)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(text), v))
}

func square(lo, hi int) *detection.Contour {
	c := detection.NewContour([]image.Point{{lo, lo}, {hi, lo}, {hi, hi}, {lo, hi}})
	return &c
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	resp := callTool(t, newTestServer(t), "image_load", map[string]interface{}{})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32000, resp.Error.Code)
	assert.Contains(t, resp.Error.Data, "unknown tool")
}

func TestExtractReference_FromPath(t *testing.T) {
	s := newTestServer(t)

	var got contourResult
	decodeResult(t, callTool(t, s, "silhouette_extract_reference", map[string]interface{}{
		"reference_path": createRender(t),
	}), &got)

	assert.True(t, got.Found)
	require.NotNil(t, got.Contour)
	assert.Equal(t, detection.Bounds{X1: 60, Y1: 60, X2: 139, Y2: 139}, got.Contour.Bounds())
}

func TestExtractReference_NoSource(t *testing.T) {
	var got contourResult
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_extract_reference", nil), &got)

	assert.False(t, got.Found)
	assert.Nil(t, got.Contour)
}

func TestExtractReference_MissingFile(t *testing.T) {
	resp := callTool(t, newTestServer(t), "silhouette_extract_reference", map[string]interface{}{
		"reference_path": filepath.Join(t.TempDir(), "missing.png"),
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32000, resp.Error.Code)
}

func TestExtractSubject(t *testing.T) {
	s := newTestServer(t)
	photo := createPhoto(t)

	var got subjectResult
	decodeResult(t, callTool(t, s, "silhouette_extract_subject", map[string]interface{}{
		"path": photo,
	}), &got)

	assert.True(t, got.Found)
	assert.Equal(t, 120, got.Width)
	assert.Equal(t, 120, got.Height)
	require.NotNil(t, got.Contour)
	assert.Equal(t, detection.Bounds{X1: 40, Y1: 40, X2: 79, Y2: 79}, got.Contour.Bounds())
	assert.Equal(t, 1, s.service.Cache().Len())
}

func TestExtractSubject_Reload(t *testing.T) {
	s := newTestServer(t)
	photo := createPhoto(t)

	var first subjectResult
	decodeResult(t, callTool(t, s, "silhouette_extract_subject", map[string]interface{}{"path": photo}), &first)
	require.True(t, first.Found)

	// Overwrite with a blank photo; only a reload sees the change.
	overwrite(t, photo, createSquareImage(t, 120, 0, 0, gray, black))

	var cached, reloaded subjectResult
	decodeResult(t, callTool(t, s, "silhouette_extract_subject", map[string]interface{}{"path": photo}), &cached)
	decodeResult(t, callTool(t, s, "silhouette_extract_subject", map[string]interface{}{"path": photo, "reload": true}), &reloaded)

	assert.True(t, cached.Found)
	assert.False(t, reloaded.Found)
}

func TestExtractSubject_PathRequired(t *testing.T) {
	resp := callTool(t, newTestServer(t), "silhouette_extract_subject", map[string]interface{}{})

	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Data, "path is required")
}

func TestCompare(t *testing.T) {
	var got compareResult
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_compare", map[string]interface{}{
		"reference": square(0, 80),
		"subject":   square(10, 30),
	}), &got)

	assert.InDelta(t, 0, got.Score, 1e-9)
	assert.Equal(t, verify.DefaultThreshold, got.Threshold)
	assert.True(t, got.Match)
}

func TestCompare_MissingSubject(t *testing.T) {
	resp := callTool(t, newTestServer(t), "silhouette_compare", map[string]interface{}{
		"reference": square(0, 80),
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32000, resp.Error.Code)
	assert.Contains(t, resp.Error.Data, "subject")
}

func TestOverlay_Inline(t *testing.T) {
	var got overlayResult
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_overlay", map[string]interface{}{
		"path":      createPhoto(t),
		"reference": square(60, 139),
		"subject":   square(40, 79),
	}), &got)

	assert.True(t, got.Fitted)
	require.NotNil(t, got.Image)
	assert.Equal(t, "image/png", got.Image.MimeType)
	assert.NotEmpty(t, got.Image.ImageBase64)
	assert.Equal(t, 120, got.Width)
}

func TestOverlay_ToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "overlay.png")

	var got overlayResult
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_overlay", map[string]interface{}{
		"path":        createPhoto(t),
		"reference":   square(60, 139),
		"subject":     square(40, 79),
		"output_path": out,
	}), &got)

	assert.Equal(t, out, got.OutputPath)
	assert.Nil(t, got.Image)

	img, err := imaging.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())

	r, g, b, _ := img.At(40, 40).RGBA()
	assert.Equal(t, [3]uint32{0, 0xffff, 0}, [3]uint32{r, g, b}, "reference outline drawn on top")
}

func TestOverlay_Degenerate(t *testing.T) {
	line := detection.NewContour([]image.Point{{0, 0}, {50, 0}})

	var got overlayResult
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_overlay", map[string]interface{}{
		"path":      createPhoto(t),
		"reference": &line,
		"subject":   square(40, 79),
	}), &got)

	assert.False(t, got.Fitted)
}

func TestOverlay_MissingContour(t *testing.T) {
	resp := callTool(t, newTestServer(t), "silhouette_overlay", map[string]interface{}{
		"path":    createPhoto(t),
		"subject": square(40, 79),
	})

	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Data, "required")
}

func TestOverlay_SubjectOutsidePhoto(t *testing.T) {
	resp := callTool(t, newTestServer(t), "silhouette_overlay", map[string]interface{}{
		"path":      createPhoto(t),
		"reference": square(60, 139),
		"subject":   square(40, 50_000_000),
	})

	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Data, "subject contour bounds")
}

func TestOverlay_ReferenceOutOfRange(t *testing.T) {
	resp := callTool(t, newTestServer(t), "silhouette_overlay", map[string]interface{}{
		"path":      createPhoto(t),
		"reference": square(-50_000_000, 50_000_000),
		"subject":   square(40, 79),
	})

	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Data, "reference contour bounds")
}

func TestOverlay_SubjectOnLastPixel(t *testing.T) {
	var got overlayResult
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_overlay", map[string]interface{}{
		"path":      createPhoto(t),
		"reference": square(60, 139),
		"subject":   square(0, 119),
	}), &got)

	assert.True(t, got.Fitted)
}

func TestOverlay_Reload(t *testing.T) {
	s := newTestServer(t)
	photo := createPhoto(t)
	args := map[string]interface{}{
		"path":      photo,
		"reference": square(60, 139),
		"subject":   square(10, 30),
	}

	var first overlayResult
	decodeResult(t, callTool(t, s, "silhouette_overlay", args), &first)
	require.Equal(t, 120, first.Width)

	overwrite(t, photo, createSquareImage(t, 60, 0, 0, gray, black))

	var cached, reloaded overlayResult
	decodeResult(t, callTool(t, s, "silhouette_overlay", args), &cached)
	args["reload"] = true
	decodeResult(t, callTool(t, s, "silhouette_overlay", args), &reloaded)

	assert.Equal(t, 120, cached.Width)
	assert.Equal(t, 60, reloaded.Width)
}

// verifyOutput mirrors verifyResult for decoding.
type verifyOutput struct {
	verify.Report
	Overlay *imageOutput `json:"overlay"`
}

func TestVerify_Match(t *testing.T) {
	var got verifyOutput
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_verify", map[string]interface{}{
		"path":           createPhoto(t),
		"reference_path": createRender(t),
	}), &got)

	assert.True(t, got.ReferenceFound)
	assert.True(t, got.SubjectFound)
	require.NotNil(t, got.Score)
	assert.Less(t, *got.Score, verify.DefaultThreshold)
	assert.True(t, got.Match)
	require.NotNil(t, got.Overlay)
	assert.NotNil(t, got.Overlay.Image)
}

func TestVerify_ThresholdAndOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "verify.png")

	var got verifyOutput
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_verify", map[string]interface{}{
		"path":           createPhoto(t),
		"reference_path": createRender(t),
		"threshold":      0.2,
		"output_path":    out,
	}), &got)

	assert.Equal(t, 0.2, got.Threshold)
	require.NotNil(t, got.Overlay)
	assert.Equal(t, out, got.Overlay.OutputPath)
	assert.FileExists(t, out)
}

func TestVerify_ReferenceReExported(t *testing.T) {
	s := newTestServer(t)
	photo := createPhoto(t)
	render := createRender(t)
	args := map[string]interface{}{"path": photo, "reference_path": render}

	var before verifyOutput
	decodeResult(t, callTool(t, s, "silhouette_verify", args), &before)
	require.True(t, before.Match)

	// Re-export the render at the same path as a long thin bar.
	overwrite(t, render, createRectImage(t, 200, image.Rect(20, 90, 180, 110), white, black))

	var after verifyOutput
	decodeResult(t, callTool(t, s, "silhouette_verify", args), &after)

	assert.True(t, after.ReferenceFound)
	require.NotNil(t, after.Score)
	assert.Greater(t, *after.Score, *before.Score)
	assert.False(t, after.Match)
}

func TestVerify_NoReference(t *testing.T) {
	var got verifyOutput
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_verify", map[string]interface{}{
		"path": createPhoto(t),
	}), &got)

	assert.False(t, got.ReferenceFound)
	assert.False(t, got.Match)
	assert.Nil(t, got.Score)
	assert.Equal(t, verify.ReasonNoReference, got.Reason)
	assert.Nil(t, got.Overlay)
}

func TestVerify_PhotoMissing(t *testing.T) {
	resp := callTool(t, newTestServer(t), "silhouette_verify", map[string]interface{}{
		"path":           filepath.Join(t.TempDir(), "missing.png"),
		"reference_path": createRender(t),
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32000, resp.Error.Code)
}

func TestMask_ReferencePolicy(t *testing.T) {
	var got maskResult
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_mask", map[string]interface{}{
		"path":   createRender(t),
		"policy": "reference",
	}), &got)

	assert.Equal(t, "reference", got.Policy)
	assert.Equal(t, 80*80, got.ForegroundPixels)
	assert.Equal(t, 200, got.Width)
	require.NotNil(t, got.Image)
}

func TestMask_DefaultPolicyToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mask.png")

	var got maskResult
	decodeResult(t, callTool(t, newTestServer(t), "silhouette_mask", map[string]interface{}{
		"path":        createPhoto(t),
		"output_path": out,
	}), &got)

	assert.Equal(t, "subject", got.Policy)
	assert.Greater(t, got.ForegroundPixels, 0)
	assert.Less(t, got.ForegroundPixels, 120*120)

	img, err := imaging.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 120), img.Bounds())
}

func TestMask_Reload(t *testing.T) {
	s := newTestServer(t)
	render := createRender(t)
	args := map[string]interface{}{"path": render, "policy": "reference"}

	var first maskResult
	decodeResult(t, callTool(t, s, "silhouette_mask", args), &first)
	require.Equal(t, 80*80, first.ForegroundPixels)

	overwrite(t, render, createSquareImage(t, 200, 0, 0, white, black))

	var cached, reloaded maskResult
	decodeResult(t, callTool(t, s, "silhouette_mask", args), &cached)
	args["reload"] = true
	decodeResult(t, callTool(t, s, "silhouette_mask", args), &reloaded)

	assert.Equal(t, 80*80, cached.ForegroundPixels)
	assert.Equal(t, 0, reloaded.ForegroundPixels)
}

func TestMask_UnknownPolicy(t *testing.T) {
	resp := callTool(t, newTestServer(t), "silhouette_mask", map[string]interface{}{
		"path":   createPhoto(t),
		"policy": "otsu",
	})

	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Data, "unknown policy")
}

func TestHandleToolsCall_LogsFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := New(nil, logger)

	callTool(t, s, "silhouette_extract_subject", map[string]interface{}{})

	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "silhouette_extract_subject", hook.LastEntry().Data["tool"])
}
