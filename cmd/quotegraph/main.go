package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kjannette/quotegraph/internal/api"
	"github.com/kjannette/quotegraph/internal/config"
	"github.com/kjannette/quotegraph/internal/controller"
	"github.com/kjannette/quotegraph/internal/graph"
	"github.com/kjannette/quotegraph/internal/loader"
	"github.com/kjannette/quotegraph/internal/logx"
	"github.com/kjannette/quotegraph/internal/report"
	"github.com/kjannette/quotegraph/internal/tui"
	"go.uber.org/zap"
)

const banner = `
╔══════════════════════════════════════╗
║          Quote Graph v1.0            ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	renderer, err := rendererFor(cfg.GraphKind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "GRAPH_KIND: %v\n", err)
		os.Exit(1)
	}
	vp := graph.Viewport{Width: float64(cfg.ViewportWidth), Height: float64(cfg.ViewportHeight)}

	// the terminal shell owns stderr
	var logPaths []string
	if cfg.ShellMode == "tui" {
		logPaths = []string{cfg.LogFile}
	}
	log, err := logx.New(cfg.LogLevel, logPaths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Data backend: postgres, then sqlite, then files
	ld, err := loader.Open(ctx, log, backends(cfg, log)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DATA] %s\n", controller.UserMessage(err))
	} else {
		fmt.Printf("[DATA] Using %s backend\n", ld.Name())
		defer func() {
			ld.Close()
			fmt.Println("[DATA] Backend closed")
		}()
	}

	switch cfg.ShellMode {
	case "summary":
		if ld == nil {
			os.Exit(1)
		}
		report.WriteSummary(ctx, os.Stdout, ld, cfg.Sources)

	case "tui":
		sh := &tui.Shell{}
		ctrl := controller.New(ld, renderer, vp, sh, log)
		p := tea.NewProgram(tui.New(ctx, ctrl, cfg.Sources, cfg.DefaultSource),
			tea.WithAltScreen(), tea.WithContext(ctx))
		sh.Attach(p.Send)
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			fmt.Fprintf(os.Stderr, "[TUI] %v\n", err)
		}

	default:
		serve(ctx, cfg, ld, renderer, vp, log)
	}

	fmt.Println("Shutdown complete")
}

// backends lists the loader factories enabled by the configuration.
// rendererFor resolves a GRAPH_KIND value to its renderer.
func rendererFor(name string) (graph.Renderer, error) {
	kind, err := graph.ParseKind(name)
	if err != nil {
		return nil, err
	}
	return graph.New(kind)
}

func backends(cfg *config.Config, log *zap.Logger) []loader.Factory {
	var fs []loader.Factory
	if cfg.DB.Host != "" {
		fs = append(fs, func(ctx context.Context) loader.Loader {
			fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
			return loader.NewPostgresLoader(ctx, cfg.DB, cfg.ConnectTimeout, log)
		})
	}
	if cfg.SQLitePath != "" {
		fs = append(fs, func(ctx context.Context) loader.Loader {
			fmt.Printf("[DB] Opening %s ...\n", cfg.SQLitePath)
			return loader.NewSQLiteLoader(ctx, cfg.SQLitePath, cfg.DefaultSource, log)
		})
	}
	if cfg.DataDir != "" {
		fs = append(fs, func(ctx context.Context) loader.Loader {
			fmt.Printf("[FILE] Reading %s ...\n", cfg.DataDir)
			return loader.NewFileLoader(cfg.DataDir, cfg.DefaultSource, log)
		})
	}
	return fs
}

func serve(ctx context.Context, cfg *config.Config, ld loader.Loader, r graph.Renderer, vp graph.Viewport, log *zap.Logger) {
	srv := api.NewServer(cfg.APIPort, cfg.CORSAllowOrigin, log)
	ctrl := controller.New(ld, r, vp, srv, log)
	srv.Bind(ctrl)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := ctrl.Start(ctx, cfg.Sources, cfg.DefaultSource); err != nil {
		fmt.Fprintf(os.Stderr, "[GRAPH] %s\n", controller.UserMessage(err))
	}

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
}
