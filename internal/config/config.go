// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
)

// Matcher names accepted by SILHOUETTE_MATCHER.
const (
	MatcherMoments = "moments"
	MatcherOpenCV  = "opencv"
)

// Config holds every tunable of the silhouette pipeline.
type Config struct {
	LogLevel string

	// Reference renders.
	RenderCutoff   uint8
	ReferenceImage string
	CaptureCommand []string
	CaptureWidth   int
	CaptureHeight  int

	// Photographs.
	BlurRadius     float64
	AdaptiveWindow int
	AdaptiveOffset float64

	// Comparison.
	Matcher        string
	MatchThreshold float64

	// Overlay.
	SubjectColor   string
	ReferenceColor string
	LineWidth      int
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		RenderCutoff:   250,
		CaptureWidth:   1920,
		CaptureHeight:  1080,
		BlurRadius:     2,
		AdaptiveWindow: 11,
		AdaptiveOffset: 2,
		Matcher:        MatcherMoments,
		MatchThreshold: 0.05,
		SubjectColor:   "#FF0000",
		ReferenceColor: "#00FF00",
		LineWidth:      2,
	}
}

// Load reads an optional .env file from the working directory and then the
// SILHOUETTE_* environment variables. Variables already set in the process
// environment win over the .env file. A .env file that exists but cannot be
// parsed is an error. Malformed values are reported together.
func Load() (*Config, error) {
	cfg := Default()
	p := &parser{}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		p.errs = append(p.errs, fmt.Errorf(".env: %w", err))
	}

	cfg.LogLevel = p.str("SILHOUETTE_LOG_LEVEL", cfg.LogLevel)
	cfg.RenderCutoff = uint8(p.intRange("SILHOUETTE_RENDER_CUTOFF", int(cfg.RenderCutoff), 0, 255))
	cfg.ReferenceImage = p.str("SILHOUETTE_REFERENCE_IMAGE", cfg.ReferenceImage)
	if cmd := p.str("SILHOUETTE_CAPTURE_COMMAND", ""); cmd != "" {
		args, err := SplitCommand(cmd)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("SILHOUETTE_CAPTURE_COMMAND: %w", err))
		}
		cfg.CaptureCommand = args
	}
	cfg.CaptureWidth = p.intRange("SILHOUETTE_CAPTURE_WIDTH", cfg.CaptureWidth, 1, 1<<15)
	cfg.CaptureHeight = p.intRange("SILHOUETTE_CAPTURE_HEIGHT", cfg.CaptureHeight, 1, 1<<15)
	cfg.BlurRadius = p.float("SILHOUETTE_BLUR_RADIUS", cfg.BlurRadius)
	cfg.AdaptiveWindow = p.intRange("SILHOUETTE_ADAPTIVE_WINDOW", cfg.AdaptiveWindow, 3, 1<<10)
	cfg.AdaptiveOffset = p.float("SILHOUETTE_ADAPTIVE_OFFSET", cfg.AdaptiveOffset)
	cfg.Matcher = strings.ToLower(p.str("SILHOUETTE_MATCHER", cfg.Matcher))
	cfg.MatchThreshold = p.float("SILHOUETTE_MATCH_THRESHOLD", cfg.MatchThreshold)
	cfg.SubjectColor = p.str("SILHOUETTE_SUBJECT_COLOR", cfg.SubjectColor)
	cfg.ReferenceColor = p.str("SILHOUETTE_REFERENCE_COLOR", cfg.ReferenceColor)
	cfg.LineWidth = p.intRange("SILHOUETTE_LINE_WIDTH", cfg.LineWidth, 1, 64)

	if cfg.BlurRadius < 0 {
		p.errs = append(p.errs, fmt.Errorf("SILHOUETTE_BLUR_RADIUS: must not be negative"))
	}
	if cfg.MatchThreshold <= 0 {
		p.errs = append(p.errs, fmt.Errorf("SILHOUETTE_MATCH_THRESHOLD: must be positive"))
	}
	if cfg.Matcher != MatcherMoments && cfg.Matcher != MatcherOpenCV {
		p.errs = append(p.errs, fmt.Errorf("SILHOUETTE_MATCHER: unknown matcher %q", cfg.Matcher))
	}

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(p.errs...))
	}
	return cfg, nil
}

// parser collects errors while reading variables so every problem is
// reported at once.
type parser struct {
	errs []error
}

func (p *parser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *parser) intRange(key string, def, lo, hi int) int {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	if n < lo || n > hi {
		p.errs = append(p.errs, fmt.Errorf("%s: %d out of range [%d, %d]", key, n, lo, hi))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a finite number", key, v))
		return def
	}
	return f
}

// SplitCommand splits a command line into arguments the way a POSIX shell
// would, without expansion. Single quotes keep their contents literally.
// Inside double quotes a backslash escapes only '"' and '\'. Elsewhere a
// backslash escapes the next character.
func SplitCommand(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, r := range s {
		switch {
		case escaped:
			if quote == '"' && r != '"' && r != '\\' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inArg = true
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}

	switch {
	case escaped:
		return nil, errors.New("trailing backslash")
	case quote != 0:
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
