package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/pose-tools-mcp/internal/config"
	"github.com/ironsheep/pose-tools-mcp/internal/detection"
	"github.com/ironsheep/pose-tools-mcp/internal/log"
	"github.com/ironsheep/pose-tools-mcp/internal/pipeline"
	"github.com/ironsheep/pose-tools-mcp/internal/server"
	"github.com/ironsheep/pose-tools-mcp/internal/web"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	modeMCP   = "mcp"
	modeServe = "serve"
)

func usage() {
	fmt.Println("pose-tools-mcp - elbow pose checker (MCP server and web UI)")
	fmt.Println()
	fmt.Println("Usage: pose-tools-mcp [--config file.yaml] [mcp|serve]")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  mcp              Serve MCP over stdin/stdout (default)")
	fmt.Println("  serve            Serve the upload page and POST /analyze over HTTP")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c     YAML config file (default: $POSE_CONFIG)")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  POSE_DETECTOR=openpose|fixture   Landmark detector backend")
	fmt.Println("  POSE_MODEL_PATH, POSE_MODEL_CONFIG  OpenPose caffemodel and prototxt")
	fmt.Println("  POSE_FIXTURE=landmarks.json      Landmark list for the fixture backend")
	fmt.Println("  POSE_HTTP_ADDR=127.0.0.1:7860    Web UI listen address")
	fmt.Println("  POSE_LOG_LEVEL=debug             Enable debug logging")
	fmt.Println("  POSE_LOG_FORMAT=json             JSON log lines on stderr")
	fmt.Println()
	fmt.Println("In mcp mode the server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func main() {
	mode := modeMCP
	configPath := ""

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("pose-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		case "--config", "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config needs a file path")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		case modeMCP, modeServe:
			mode = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown argument: %s\n\n", args[i])
			usage()
			os.Exit(2)
		}
	}

	if err := run(mode, configPath); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(mode, configPath string) error {
	// Logging goes to stderr; stdout is for MCP protocol
	log.Init(log.Options{Level: "info"})

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log.Init(cfg.LogOptions())
	log.Debug("pose-tools-mcp starting", "version", Version, "built", BuildTime, "commit", GitCommit, "mode", mode)

	annotator, err := cfg.Annotator()
	if err != nil {
		return err
	}

	detector, err := detection.New(cfg.DetectionConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := detector.Close(); err != nil {
			log.Warn("failed to close detector", "error", err)
		}
	}()

	p, err := pipeline.New(detector, pipeline.WithAnnotator(annotator))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case modeServe:
		return serveWeb(ctx, p, cfg)
	default:
		server.Version = Version
		if err := server.New(p).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Debug("mcp server stopped")
		return nil
	}
}

func serveWeb(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config) error {
	srv, err := web.NewServer(p, web.Options{
		Addr:      cfg.HTTP.Addr,
		BodyLimit: cfg.HTTP.BodyLimitMB * 1024 * 1024,
		Version:   Version,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down web UI")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
