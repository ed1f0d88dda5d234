// Command aria is the ARIA MCP server: browser automation, ad platform
// management, AI generation, and campaign storage behind a stdio MCP
// transport, with a local status dashboard on the side.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariahq/aria/pkg/browser"
	"github.com/ariahq/aria/pkg/config"
	"github.com/ariahq/aria/pkg/dashboard"
	"github.com/ariahq/aria/pkg/db/supabase"
	"github.com/ariahq/aria/pkg/llm/assistant"
	"github.com/ariahq/aria/pkg/llm/gemini"
	"github.com/ariahq/aria/pkg/logging"
	"github.com/ariahq/aria/pkg/mcp"
	graph "github.com/ariahq/aria/pkg/platform/facebook"
	"github.com/ariahq/aria/pkg/store"
	"github.com/ariahq/aria/pkg/tools"
	"github.com/ariahq/aria/pkg/tools/analytics"
	"github.com/ariahq/aria/pkg/tools/browsertools"
	"github.com/ariahq/aria/pkg/tools/campaigns"
	"github.com/ariahq/aria/pkg/tools/chat"
	fbtools "github.com/ariahq/aria/pkg/tools/facebook"
	"github.com/ariahq/aria/pkg/tools/generate"
	"github.com/ariahq/aria/pkg/tools/googleads"
	"github.com/ariahq/aria/pkg/tools/landing"
)

const (
	serverName    = "aria-mcp"
	serverVersion = "1.0.0"

	// shutdownGrace bounds how long browser teardown may delay exit.
	shutdownGrace = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, _ := logging.NewLogger("aria")
	log.Infof("starting ARIA MCP server")

	st, err := store.New(cfg.StoreDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Browser init is best-effort: without it the browser-dependent tools
	// report per call, everything else keeps working.
	mgr := browser.NewManager(st, browser.Options{
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		Locale:         cfg.Locale,
		UserAgent:      cfg.UserAgent,
	})
	if err := mgr.Initialize(); err != nil {
		log.Warnf("browser init failed, browser tools unavailable: %v", err)
	}

	dash := dashboard.New(mgr, st, staticDir())
	go func() {
		if err := dash.Start(ctx, cfg.DashboardPort); err != nil {
			log.Errorf("%v", err)
		}
	}()

	registry, err := buildRegistry(ctx, cfg, st, mgr, log)
	if err != nil {
		return err
	}
	log.Infof("%d tools registered", len(registry.List()))

	server := mcp.NewServer(serverName, serverVersion, registry)
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()

	select {
	case <-ctx.Done():
		log.Infof("shutdown signal received")
	case err = <-serveErr:
		if err != nil && err != context.Canceled {
			log.Errorf("mcp server: %v", err)
		}
	}

	shutdownBrowser(mgr, log)
	return nil
}

func buildRegistry(ctx context.Context, cfg *config.Config, st *store.Store, mgr *browser.Manager, log *logging.Logger) (*tools.Registry, error) {
	graphClient := graph.NewClient(fbtools.TokenFromStore(st))

	var db *supabase.Client
	if cfg.SupabaseConfigured() {
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, err
		}
		db = client
	} else {
		log.Warnf("supabase not configured, campaign storage tools will report it")
	}

	var copyGen generate.Generator
	var pageGen landing.Generator
	if cfg.GeminiConfigured() {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		copyGen, pageGen = client, client
	} else {
		log.Warnf("gemini not configured, generation tools will report it")
	}

	var marketer chat.Assistant
	if cfg.AssistantConfigured() {
		opts := []assistant.Option{}
		if cfg.AssistantModel != "" {
			opts = append(opts, assistant.WithModel(cfg.AssistantModel))
		}
		client, err := assistant.NewClient(cfg.AssistantKey, cfg.AssistantURL, opts...)
		if err != nil {
			return nil, err
		}
		marketer = client
	}

	registry := tools.NewRegistry()
	registry.MustRegister(browsertools.New(mgr, st).All()...)
	registry.MustRegister(fbtools.New(mgr, st, graphClient, cfg.FBAppID).All()...)
	registry.MustRegister(googleads.New(mgr, st).All()...)
	registry.MustRegister(campaigns.New(db).All()...)
	registry.MustRegister(generate.New(copyGen).All()...)
	registry.MustRegister(landing.New(pageGen, st).All()...)
	registry.MustRegister(analytics.New(db, st).All()...)
	registry.MustRegister(chat.New(marketer).All()...)
	return registry, nil
}

// staticDir locates the bundled dashboard assets, if any.
func staticDir() string {
	if info, err := os.Stat("dashboard"); err == nil && info.IsDir() {
		return "dashboard"
	}
	return ""
}

// shutdownBrowser closes the browser but refuses to hang exit on it.
func shutdownBrowser(mgr *browser.Manager, log *logging.Logger) {
	done := make(chan struct{})
	go func() {
		mgr.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownGrace):
		log.Warnf("browser shutdown timed out after %s", shutdownGrace)
	}
}
