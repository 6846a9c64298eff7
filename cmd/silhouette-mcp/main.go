package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/silhouette-mcp/internal/config"
	"github.com/ironsheep/silhouette-mcp/internal/container"
	"github.com/ironsheep/silhouette-mcp/internal/logger"
	"github.com/ironsheep/silhouette-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("silhouette-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("silhouette-mcp - MCP server for CAD silhouette verification")
			fmt.Println()
			fmt.Println("Usage: silhouette-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  SILHOUETTE_LOG_LEVEL=debug              Log level (default info)")
			fmt.Println("  SILHOUETTE_REFERENCE_IMAGE=<path>       Pre-rendered reference image")
			fmt.Println("  SILHOUETTE_CAPTURE_COMMAND=<command>    Render command; {output} {width} {height} are expanded")
			fmt.Println("                                          Quote arguments containing spaces as in a shell")
			fmt.Println("  SILHOUETTE_MATCH_THRESHOLD=0.05         Scores below this are a match")
			fmt.Println("  SILHOUETTE_MATCHER=moments|opencv       Shape comparison backend")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout is for MCP protocol
	log, err := logger.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	log.WithField("version", Version).
		WithField("build_time", BuildTime).
		WithField("commit", GitCommit).
		Debug("silhouette MCP server starting")

	c, err := container.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(c.Service, log)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("server error")
	}
}
