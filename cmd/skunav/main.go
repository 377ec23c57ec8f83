package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mgodinho/skunav/internal/cache"
	"github.com/mgodinho/skunav/internal/config"
	"github.com/mgodinho/skunav/internal/domain"
	"github.com/mgodinho/skunav/internal/drive"
	"github.com/mgodinho/skunav/internal/history"
	"github.com/mgodinho/skunav/internal/log"
	"github.com/mgodinho/skunav/internal/sku"
	"github.com/mgodinho/skunav/internal/store"
	"github.com/mgodinho/skunav/internal/tui"
	"github.com/mgodinho/skunav/internal/workflow"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("skunav %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting skunav", "version", Version, "offline", cfg.Drive.Offline)

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg)
	}

	// Open the persistent store (memory-only when data_dir is empty)
	st, err := store.New(cfg.Cache.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	router, err := drive.NewRouter(nil)
	if err != nil {
		return fmt.Errorf("failed to build routing table: %w", err)
	}

	auth := drive.NewTokenAuth(cfg.Drive.URL, cfg.Drive.Token, logger)

	var (
		resolver domain.Resolver
		paths    domain.PathResolver
	)
	if cfg.Drive.Offline {
		off := drive.NewOfflineResolver(router, logger)
		resolver, paths = off, off
	} else {
		client := drive.NewClient(cfg.Drive.URL, auth.Token, router, logger)
		resolver, paths = client, client
	}

	folderCache := cache.New(resolver, st, cache.Options{
		TTL:         cfg.Cache.TTL,
		NegativeTTL: cfg.Cache.NegativeTTL,
		RetryCap:    cfg.Cache.RetryCap,
		RetryBase:   cfg.Cache.RetryBase,
		Offline:     cfg.Drive.Offline,
	}, logger)

	hist, err := history.NewService(st, cfg.History.RecentsCapacity, logger)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	// Bridge orchestrator events into the TUI
	events := make(chan workflow.Event, 64)
	sink := tui.NewChannelSink(events)

	orch := workflow.New(
		newClipboard(cfg.Clipboard.Mock),
		sku.MustDetector(),
		folderCache,
		hist,
		auth,
		paths,
		sink,
		cfg.Drive.Offline,
		logger,
	)

	model := tui.NewModel(orch, hist, events)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when no token is configured
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to skunav!")
	fmt.Println()
	fmt.Println("A Google Drive OAuth token is needed to resolve SKU folders.")
	fmt.Println("You can also run fully offline with drive.offline: true.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Run in offline mode? [y/N]: ")
	answer, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if strings.EqualFold(strings.TrimSpace(answer), "y") {
		cfg.Drive.Offline = true
		if err := config.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Println()
		fmt.Println("✓ Offline mode saved! Run skunav again to start.")
		return nil
	}

	// Token is read without echo
	fmt.Print("Paste your Drive token: ")
	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	cfg.Drive.Token = token
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run skunav again to start the application.")

	return nil
}

// systemClipboard reads the OS clipboard.
type systemClipboard struct{}

func (systemClipboard) Read() (string, error) {
	return clipboard.ReadAll()
}

// mockClipboard returns a fixed text, for demos and headless testing.
type mockClipboard struct {
	text string
}

func (c mockClipboard) Read() (string, error) {
	return c.text, nil
}

func newClipboard(mock string) domain.Clipboard {
	if mock != "" {
		return mockClipboard{text: mock}
	}
	return systemClipboard{}
}
