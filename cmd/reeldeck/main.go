package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcahill/reeldeck/internal/config"
	"github.com/mmcahill/reeldeck/internal/feed"
	"github.com/mmcahill/reeldeck/internal/gateway"
	"github.com/mmcahill/reeldeck/internal/identity"
	"github.com/mmcahill/reeldeck/internal/interactions"
	"github.com/mmcahill/reeldeck/internal/log"
	"github.com/mmcahill/reeldeck/internal/mediasvc"
	"github.com/mmcahill/reeldeck/internal/store"
	"github.com/mmcahill/reeldeck/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("reeldeck %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.Setup(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.Null()
	}
	slog.SetDefault(logger)

	logger.Info("starting reeldeck", "version", Version)

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	// Local session state: the stable client identity
	sessions, err := store.NewSessionStore(config.DataPath())
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer sessions.Close()

	clientID, err := sessions.EnsureClientID()
	if err != nil {
		return fmt.Errorf("failed to establish client identity: %w", err)
	}

	// Interaction state is in-memory and process-lifetime only
	cache := interactions.NewCache(logger)

	// Remote clients
	tokens := identity.NewProvider(cfg.Identity.URL, cfg.Identity.ClientKey, logger)
	client := mediasvc.NewClient(cfg.Media.URL, tokens, logger)

	// Feed machinery
	resolver := feed.NewResolver(client, clientID, cfg.Feed.PageSize, logger)
	searcher := feed.NewSearch(client, cache, clientID, cfg.Feed.SearchLimit, logger)
	watchlist := feed.NewWatchlist(client, cache, clientID, cfg.Feed.SearchLimit, logger)

	// Mutation gateways feed toasts back to the UI over a channel
	toastCh := make(chan tui.ToastMsg, 16)
	notifier := tui.NewChannelNotifier(toastCh)
	ratings := gateway.NewRatingGateway(cache, client, notifier, clientID, logger)
	bookmarks := gateway.NewBookmarkGateway(cache, client, notifier, clientID, logger)

	model := tui.NewModel(tui.Deps{
		Cache:     cache,
		Resolver:  resolver,
		Search:    searcher,
		Watchlist: watchlist,
		Ratings:   ratings,
		Bookmarks: bookmarks,
		Sessions:  sessions,
		ToastCh:   toastCh,
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	// Let in-flight mutations resolve before the process exits
	ratings.Flush()
	bookmarks.Flush()

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to Reeldeck!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	mediaURL, err := promptNonEmpty(reader, "Media service URL (e.g., https://media.example.com): ")
	if err != nil {
		return err
	}
	identityURL, err := promptNonEmpty(reader, "Identity provider URL (e.g., https://id.example.com): ")
	if err != nil {
		return err
	}

	// Client key is a credential; read it without echo
	fmt.Print("Client key: ")
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read client key: %w", err)
	}
	clientKey := strings.TrimSpace(string(keyBytes))
	if clientKey == "" {
		return fmt.Errorf("client key cannot be empty")
	}

	fmt.Print("Account name (display only, optional): ")
	account, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	// Verify the key before saving anything
	fmt.Println()
	fmt.Println("Verifying credentials...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	provider := identity.NewProvider(identityURL, clientKey, logger)
	if _, err := provider.Token(ctx); err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}
	fmt.Println("✓ Credentials verified")

	cfg.Media.URL = mediaURL
	cfg.Identity.URL = identityURL
	cfg.Identity.ClientKey = clientKey
	cfg.Identity.Account = strings.TrimSpace(account)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run reeldeck again to start the application.")

	return nil
}

func promptNonEmpty(reader *bufio.Reader, prompt string) (string, error) {
	for {
		fmt.Print(prompt)
		input, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		if value := strings.TrimSpace(input); value != "" {
			return value, nil
		}
		fmt.Println("Value cannot be empty. Please try again.")
	}
}
