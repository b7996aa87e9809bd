// Command tuno plays a game of UNO in the terminal against the heuristic bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/tuno/internal/cache"
	"github.com/jason-s-yu/tuno/internal/config"
	"github.com/jason-s-yu/tuno/internal/database"
	"github.com/jason-s-yu/tuno/internal/game"
	"github.com/jason-s-yu/tuno/internal/logging"
	"github.com/jason-s-yu/tuno/internal/prompt"
	"github.com/jason-s-yu/tuno/internal/render"
	"github.com/jason-s-yu/tuno/internal/spectate"
)

var (
	configPath string
	players    string
	bot        string
	seed       uint64
)

func init() {
	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.StringVar(&players, "players", "", "comma-separated player names (overrides config)")
	flag.StringVar(&bot, "bot", "", "name of the computer-controlled player (overrides config)")
	flag.Uint64Var(&seed, "seed", 0, "random seed (0 = use current time)")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if names := config.SplitNames(players); len(names) > 0 {
		cfg.Players = names
	}
	if bot != "" {
		cfg.Bot = bot
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	now := time.Now()
	lg, err := logging.Setup(cfg.Log, now)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer lg.Close()
	if dir, err := logging.ExpandHome(cfg.Log.Dir); err == nil {
		if n, err := logging.Purge(dir, cfg.Log.RetentionDays, now); err != nil {
			lg.WithError(err).Warn("purging old logs failed")
		} else if n > 0 {
			lg.WithField("removed", n).Info("purged old logs")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := game.Options{
		Config: cfg,
		Asker:  prompt.NewConsole(ctx, os.Stdin, os.Stdout),
		Logger: lg.Logger,
	}
	renderers := render.Multi{render.NewText(os.Stdout)}

	if cfg.SpectateAddr != "" {
		hub := spectate.NewHub(nil, lg.WithField("component", "spectate"))
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: cfg.SpectateAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				lg.WithError(err).Error("spectator server stopped")
			}
		}()
		defer shutdown(srv, lg.Logger)
		// Runs before shutdown so spectators get a close frame.
		defer hub.Close()
		renderers = append(renderers, hub)
		lg.WithField("addr", cfg.SpectateAddr).Info("spectators accepted")
	}
	opts.Renderer = renderers

	if cfg.RedisURL != "" {
		pub, err := cache.NewPublisher(cfg.RedisURL)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err = pub.Ping(pingCtx)
			cancel()
		}
		if err != nil {
			lg.WithError(err).Warn("action log disabled")
		} else {
			defer pub.Close()
			opts.Publisher = pub
		}
	}

	if cfg.DatabaseURL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		store, err := database.Open(dbCtx, cfg.DatabaseURL)
		if err == nil {
			if err = store.Migrate(dbCtx); err != nil {
				store.Close()
			}
		}
		cancel()
		if err != nil {
			lg.WithError(err).Warn("result recording disabled")
		} else {
			defer store.Close()
			opts.Recorder = store
		}
	}

	s, err := game.New(cfg.Players, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		lg.WithError(err).Error("could not start game")
		return 2
	}

	winner, err := s.Run(ctx)
	switch {
	case err == nil:
		lg.WithField("winner", winner).Info("bye")
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Println("\nGame interrupted. Bye!")
		return 0
	default:
		lg.WithError(err).Error("game ended with an error")
		fmt.Fprintf(os.Stderr, "A log file with diagnostic information has been generated at %s\n", lg.Path)
		return 1
	}
}

func shutdown(srv *http.Server, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("spectator server shutdown")
	}
}
