package container

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/silhouette-mcp/internal/capture"
	"github.com/ironsheep/silhouette-mcp/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	logger, _ := test.NewNullLogger()

	c, err := New(config.Default(), logger)

	require.NoError(t, err)
	require.NotNil(t, c.Service)
	assert.Same(t, c.Cache, c.Service.Cache())
	assert.Equal(t, 0.05, c.Service.Threshold())
}

func TestNew_InvalidColor(t *testing.T) {
	cfg := config.Default()
	cfg.ReferenceColor = "green"

	_, err := New(cfg, nil)

	assert.ErrorContains(t, err, "reference color")
}

func TestNewCapturer_Selection(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, capture.NullCapture{}, NewCapturer(cfg, nil))

	cfg.ReferenceImage = "/renders/part.png"
	fc, ok := NewCapturer(cfg, nil).(*capture.FileCapture)
	require.True(t, ok)
	assert.Equal(t, "/renders/part.png", fc.Path())

	cfg.CaptureCommand = []string{"snap", "{output}"}
	assert.IsType(t, &capture.CommandCapture{}, NewCapturer(cfg, nil))
}

func TestNewMatcher_Unknown(t *testing.T) {
	_, err := newMatcher("fourier")
	assert.Error(t, err)
}
