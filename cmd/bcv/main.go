// bcv is a real-time TUI card for one exercise-bike telemetry feed.
//
// It watches the feed file for new readings and shows speed, power,
// cadence, distance and derived averages, whether the bike is still
// transmitting, and a display name that can be edited in place.
//
// Usage:
//
//	bcv                         # Auto-discover .bikecard/feed.json
//	bcv --feed <path>           # Use a specific feed file
//	bcv --names <path>          # Names database (default: next to the feed)
//	bcv --json                  # Print the current card as JSON and exit
//	bcv --serve --addr :8787    # Serve the card over HTTP instead of the TUI
//	bcv --refresh 5s            # Set polling fallback interval
//	bcv --config bcv.yaml       # Load settings from YAML
//	bcv --version               # Print version and exit
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/daviddao/bikecard_viewer/internal/api"
	"github.com/daviddao/bikecard_viewer/internal/config"
	"github.com/daviddao/bikecard_viewer/internal/datasource"
	"github.com/daviddao/bikecard_viewer/internal/logging"
	"github.com/daviddao/bikecard_viewer/internal/names"
	"github.com/daviddao/bikecard_viewer/internal/snapshot"
	"github.com/daviddao/bikecard_viewer/internal/telemetry"
)

// Version is set via ldflags at build time (e.g. -X main.Version=v0.1.0).
var Version = "dev"

type cliFlags struct {
	config  string
	feed    string
	names   string
	logFile string
	addr    string
	refresh time.Duration
	json    bool
	serve   bool
	version bool
}

func parseFlags(args []string) (*cliFlags, map[string]bool, error) {
	var f cliFlags
	fs := flag.NewFlagSet("bcv", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "path to YAML config (default: $BIKECARD_CONFIG)")
	fs.StringVar(&f.feed, "feed", "", "path to feed.json (default: auto-discover)")
	fs.StringVar(&f.names, "names", "", "path to names database, or :memory: (default: next to feed)")
	fs.StringVar(&f.logFile, "log", "", "log file (default: none)")
	fs.StringVar(&f.addr, "addr", "", "listen address for --serve")
	fs.DurationVar(&f.refresh, "refresh", 2*time.Second, "polling fallback interval")
	fs.BoolVar(&f.json, "json", false, "print the current card as JSON and exit (no TUI)")
	fs.BoolVar(&f.serve, "serve", false, "serve the card over HTTP instead of the TUI")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return &f, set, nil
}

// applyFlags overlays explicitly set flags on cfg.
func applyFlags(cfg *config.Config, f *cliFlags, set map[string]bool) {
	if set["feed"] {
		cfg.Feed = f.feed
	}
	if set["names"] {
		cfg.Names = f.names
	}
	if set["log"] {
		cfg.Log.File = f.logFile
	}
	if set["addr"] {
		cfg.Server.Addr = f.addr
	}
	if set["refresh"] {
		cfg.Refresh = config.Duration(f.refresh)
	}
}

func main() {
	f, set, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if f.version {
		fmt.Printf("bcv %s\n", Version)
		os.Exit(0)
	}

	if err := run(f, set); err != nil {
		fmt.Fprintf(os.Stderr, "bcv: %v\n", err)
		os.Exit(1)
	}
}

func run(f *cliFlags, set map[string]bool) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	applyFlags(cfg, f, set)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var stderr io.Writer
	if f.serve {
		stderr = os.Stderr
	}
	logger, closeLog, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	reading, feedPath, err := datasource.Open(cfg.Feed)
	if err != nil {
		return err
	}

	namesPath := cfg.Names
	if namesPath == "" {
		namesPath = datasource.DefaultNamesPath(feedPath)
	}
	kv, err := names.OpenSQLite(namesPath)
	if err != nil {
		return fmt.Errorf("names: %w", err)
	}
	defer kv.Close()
	n := names.New(kv)

	logger.Info("starting",
		zap.String("version", Version),
		zap.String("feed", feedPath),
		zap.String("names", namesPath),
		zap.Duration("refresh", cfg.Refresh.Std()))

	switch {
	case f.json:
		return dumpJSON(os.Stdout, reading, n, time.Now())
	case f.serve:
		return serve(cfg, feedPath, n, logger)
	}

	w, err := datasource.NewWatcher(feedPath)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	editor := names.NewEditor(n)
	if err := editor.Load(reading.Device); err != nil {
		return err
	}

	m := newModel(feedPath, reading, editor, logger)
	m.refreshInterval = cfg.Refresh.Std()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())

	// Feed change events into the TUI.
	go func() {
		for range w.Changes() {
			p.Send(feedChangedMsg{})
		}
	}()

	go func() {
		for err := range w.Errors() {
			logger.Warn("watch feed", zap.Error(err))
		}
	}()

	// Polling fallback: refresh at --refresh interval even if fsnotify misses events.
	go func() {
		ticker := time.NewTicker(cfg.Refresh.Std())
		defer ticker.Stop()
		for range ticker.C {
			p.Send(feedChangedMsg{})
		}
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// dumpJSON prints the card for reading evaluated at now.
func dumpJSON(out io.Writer, reading *telemetry.Reading, n *names.Names, now time.Time) error {
	var override string
	if reading.Device != "" {
		var err error
		override, _, err = n.Get(reading.Device)
		if err != nil {
			return err
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot.Build(reading, override, now)); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	return nil
}

func serve(cfg *config.Config, feedPath string, n *names.Names, logger *zap.Logger) error {
	srv := api.NewServer(func() (*telemetry.Reading, error) {
		return datasource.Load(feedPath)
	}, n, logger)

	hs := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", hs.Addr))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}
