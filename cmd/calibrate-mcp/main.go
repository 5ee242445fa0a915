package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/ironsheep/circle-calibrate-mcp/internal/config"
	"github.com/ironsheep/circle-calibrate-mcp/internal/logging"
	"github.com/ironsheep/circle-calibrate-mcp/internal/metrics"
	"github.com/ironsheep/circle-calibrate-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("circle-calibrate-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "detect":
			logger := logging.NewConsole(logging.ParseLevel(os.Getenv("IMAGE_MCP_LOG_LEVEL")))
			if err := runDetect(os.Args[2:], os.Stdout, os.Stderr, logger); err != nil {
				if !errors.Is(err, errUsage) {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
				os.Exit(1)
			}
			return
		}
	}

	// stdout is for MCP protocol
	logger := logging.New(os.Stderr, logging.ParseLevel(os.Getenv("IMAGE_MCP_LOG_LEVEL")))
	logger.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("Circle calibrate MCP server starting")

	m := metrics.New()
	if addr := os.Getenv("IMAGE_MCP_METRICS_ADDR"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		go func() {
			logger.Info().Str("addr", addr).Msg("Serving metrics")
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error().Err(err).Msg("Metrics listener stopped")
			}
		}()
	}

	srv := server.New(logger, config.Default(), m)
	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Server error")
	}
}

func printUsage() {
	fmt.Println("circle-calibrate-mcp - MCP server for reference-circle scale calibration")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  circle-calibrate-mcp [options]          Run the MCP server on stdin/stdout")
	fmt.Println("  circle-calibrate-mcp detect [flags]     Calibrate one image file")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  IMAGE_MCP_LOG_LEVEL=debug           Log level (debug, info, warn, error, off)")
	fmt.Println("  IMAGE_MCP_METRICS_ADDR=:9090        Serve Prometheus metrics at /metrics")
	fmt.Println()
	fmt.Println("Run 'circle-calibrate-mcp detect -h' for the detect flags.")
}
