package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/game"
	"github.com/pthm-cable/snowfall/stream"
	"github.com/pthm-cable/snowfall/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	serveAddr := flag.String("serve", "", "Stream particle frames over websocket on this address (e.g. :8080)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in frames (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	workers := flag.Int("workers", 0, "Transfer worker pool size (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:        rngSeed,
		OutputDir:   *outputDir,
		StatsWindow: *statsWindow,
		LogStats:    *logStats,
		Workers:     *workers,
	}

	g, err := game.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *stream.Hub
	if *serveAddr != "" {
		hub = stream.NewHub(cfg.Stream)
		defer hub.Close()

		every := int32(cfg.Stream.BroadcastEvery)
		g.SetFrameHook(func(g *game.Game) {
			if g.Frame()%every == 0 {
				hub.Publish(g.Sim())
			}
		})

		srv := startServer(*serveAddr, cfg.Stream.Path, hub)
		defer shutdownServer(srv)
	}

	done := func() bool {
		if *maxFrames > 0 && int(g.Frame()) >= *maxFrames {
			slog.Info("max frames reached", "frame", g.Frame())
			return true
		}
		return ctx.Err() != nil
	}

	if *headless {
		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"max_frames", *maxFrames,
			"serve", *serveAddr,
		)
		runHeadless(ctx, g, hub, cfg.Screen.TargetFPS, done)
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	view := ui.NewView(g)
	for !rl.WindowShouldClose() && !done() {
		hub.Drain(g)
		view.HandleInput()
		g.Update(rl.GetFrameTime())
		view.Draw()
	}
}

// runHeadless steps the game at full speed, or paced to the target frame
// rate while frames are being streamed.
func runHeadless(ctx context.Context, g *game.Game, hub *stream.Hub, fps int, done func() bool) {
	if hub == nil {
		for !done() {
			g.UpdateHeadless()
			if g.Failed() != nil {
				return
			}
		}
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for !done() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hub.Drain(g)
			g.UpdateHeadless()
		}
	}
}

func startServer(addr, path string, hub *stream.Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, hub)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("streaming frames", "addr", addr, "path", path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("stream server failed", "error", err)
		}
	}()
	return srv
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("stream server shutdown", "error", err)
	}
}
