// Package main is the entry point for quill-lsp, a command-line probe for
// the editor's language-server layer. It spawns the configured server for a
// file, performs the initialize handshake, requests hover information at a
// position, and prints the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/quill-editor/quill/internal/config"
	"github.com/quill-editor/quill/internal/filetype"
	"github.com/quill-editor/quill/internal/integration/process"
	"github.com/quill-editor/quill/internal/logging"
	"github.com/quill-editor/quill/internal/lsp"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}

	absPath, err := filepath.Abs(opts.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: resolving %s: %v\n", opts.File, err)
		return 1
	}

	languageID := opts.Language
	if languageID == "" {
		ft := filetype.Detect(absPath)
		if !ft.Known() {
			fmt.Fprintf(os.Stderr, "Error: cannot detect file type of %s (use -lang)\n", opts.File)
			return 1
		}
		languageID = ft.LanguageID
	}

	server, ok := cfg.ServerFor(languageID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no language server configured for %q\n", languageID)
		return 1
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", opts.File, err)
		return 1
	}

	logger := logging.New(logging.DefaultConfig())
	logger.SetLevel(logging.ParseLevel(opts.LogLevel))

	timeout := cfg.RequestTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	conn, err := lsp.NewConnector(server.Command, server.Args, languageID, absPath,
		lsp.WithRequestTimeout(timeout),
		lsp.WithLogger(logger))
	if err != nil {
		var spawnErr *process.SpawnError
		if errors.As(err, &spawnErr) {
			fmt.Fprintf(os.Stderr, "Error: language server %q unavailable: %v\n", server.Command, spawnErr.Err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	defer conn.Close()

	// Make sure the subprocess dies if the user interrupts the probe.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		conn.Close()
		os.Exit(1)
	}()

	ctx := context.Background()
	if err := conn.Init(ctx, documentText(data)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initialize handshake failed: %v\n", err)
		return 1
	}

	lines := conn.Hover(ctx, opts.Line, opts.Column)
	if len(lines) == 0 {
		fmt.Println("no hover information")
		return 0
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return 0
}

// documentText normalizes the on-disk bytes to the CRLF-joined snapshot the
// handshake sends in textDocument/didOpen.
func documentText(data []byte) string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\r\n")
}

type options struct {
	ConfigPath string
	Language   string
	Line       int
	Column     int
	Timeout    time.Duration
	LogLevel   string
	File       string
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&opts.Language, "lang", "", "Language ID override (detected from extension by default)")
	flag.IntVar(&opts.Line, "line", 0, "Zero-based line of the hover position")
	flag.IntVar(&opts.Column, "col", 0, "Zero-based column of the hover position")
	flag.DurationVar(&opts.Timeout, "timeout", 0, "Per-request timeout (0 uses the configured value)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "quill-lsp - language server hover probe\n\n")
		fmt.Fprintf(os.Stderr, "Usage: quill-lsp [options] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  quill-lsp -line 41 -col 8 main.go     Hover over main.go:42:9\n")
		fmt.Fprintf(os.Stderr, "  quill-lsp -lang rust -line 3 lib.rs   Force the language ID\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("quill-lsp %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.File = flag.Arg(0)

	return opts
}
