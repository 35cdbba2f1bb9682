package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/cell-counter-mcp/internal/config"
	"github.com/ironsheep/cell-counter-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const envLogLevel = "CELL_MCP_LOG_LEVEL"

func main() {
	showVersion := flag.Bool("version", false, "Print version information")
	flag.BoolVar(showVersion, "v", false, "Print version information (shorthand)")
	configPath := flag.String("config", "", "Path to a YAML config file (default $"+config.EnvPath+")")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("cell-counter-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	path := config.ResolvePath(*configPath)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cell-counter-mcp: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg, os.Getenv(envLogLevel))
	logger.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
		"config":  path,
	}).Debug("starting cell counter MCP server")

	srv := server.New(cfg, logger)
	srv.SetVersion(Version)
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "cell-counter-mcp - MCP server for counting cells in microscopy images")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: cell-counter-mcp [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment variables:")
	fmt.Fprintf(out, "  %s=<path>     Config file when --config is not given\n", config.EnvPath)
	fmt.Fprintf(out, "  %s=debug   Enable debug logging\n", envLogLevel)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "This server communicates via MCP protocol over stdin/stdout.")
}

// initLogger builds a stderr logger; stdout carries the protocol. An
// environment level overrides the config file, and debug switches to the
// text formatter.
func initLogger(cfg *config.Config, envLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	levelName := cfg.Logging.Level
	if envLevel != "" {
		levelName = envLevel
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if level >= logrus.DebugLevel || strings.EqualFold(cfg.Logging.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}
