package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/silhouette-mcp/internal/imaging"
)

// Placeholders substituted into command arguments.
const (
	OutputPlaceholder = "{output}"
	WidthPlaceholder  = "{width}"
	HeightPlaceholder = "{height}"
)

// CommandCapture runs an external renderer that writes a silhouette image to
// a file, then loads that file.
//
// The command receives the output path and snapshot size through the
// {output}, {width} and {height} placeholders in its arguments. The render is
// written into a fresh temporary directory that is removed before Capture
// returns, on success or failure.
type CommandCapture struct {
	args   []string
	width  int
	height int
	log    logrus.FieldLogger
}

// NewCommandCapture returns a CommandCapture for the given argv. Non-positive
// sizes use the defaults.
func NewCommandCapture(args []string, width, height int, log logrus.FieldLogger) *CommandCapture {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CommandCapture{args: args, width: width, height: height, log: log}
}

// Capture implements Capturer. An empty command is unavailable.
func (c *CommandCapture) Capture(ctx context.Context) (image.Image, error) {
	if len(c.args) == 0 || c.args[0] == "" {
		return nil, ErrCaptureUnavailable
	}

	dir, err := os.MkdirTemp("", "silhouette-capture-")
	if err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			c.log.WithError(err).WithField("dir", dir).Warn("failed to remove capture directory")
		}
	}()

	output := filepath.Join(dir, "reference.png")
	args := c.expand(output)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.log.WithField("command", args[0]).Debug("running capture command")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("capture command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return imaging.LoadFile(output)
}

func (c *CommandCapture) expand(output string) []string {
	r := strings.NewReplacer(
		OutputPlaceholder, output,
		WidthPlaceholder, strconv.Itoa(c.width),
		HeightPlaceholder, strconv.Itoa(c.height),
	)
	out := make([]string, len(c.args))
	for i, a := range c.args {
		out[i] = r.Replace(a)
	}
	return out
}
