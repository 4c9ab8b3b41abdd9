package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/halo/internal/config"
	"github.com/1broseidon/halo/internal/daemon"
	"github.com/1broseidon/halo/internal/desktop"
	"github.com/1broseidon/halo/internal/hotkeys"
	"github.com/1broseidon/halo/internal/ipc"
	"github.com/1broseidon/halo/internal/overlay"
	"github.com/1broseidon/halo/internal/radial"
	"github.com/1broseidon/halo/internal/render"
	"github.com/1broseidon/halo/internal/runtimepath"
	"github.com/1broseidon/halo/internal/x11"
)

const registryInterval = time.Minute

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	verbose := fs.Bool("verbose", false, "Log at debug level")
	fs.BoolVar(verbose, "v", false, "Log at debug level (shorthand)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: halo daemon [--verbose]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the menu daemon in the foreground.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, cfgPath, cfgErr := config.LoadOrSetup()
	logger := newLogger(os.Stderr, parseLevel(cfg.LogLevel, *verbose))
	if cfgErr != nil {
		logger.Warn("no usable config, showing the setup slot", "err", cfgErr)
	} else {
		logger.Info("configuration loaded", "path", cfgPath, "slots", len(cfg.Directed()))
	}

	conn, err := x11.NewConnection()
	if err != nil {
		logger.Error("failed to connect to display", "err", err)
		return 1
	}
	defer conn.Close()

	backend, closeBackend, err := openBackend(cfg.Backend, conn)
	if err != nil {
		logger.Error("failed to open backend", "err", err)
		return 1
	}
	defer closeBackend()
	logger.Info("backend ready", "backend", backend.Name())

	registry := desktop.NewRegistry(desktop.ApplicationDirs(), desktop.DefaultIconFinder(""), slogger(logger, "desktop"))
	if err := registry.Refresh(); err != nil {
		logger.Warn("failed to scan desktop entries", "err", err)
	}

	renderer, err := render.NewRenderer(themeFor(cfg, logger), render.NewIconCache(cfg.Appearance.IconSize))
	if err != nil {
		logger.Error("failed to create renderer", "err", err)
		return 1
	}

	var ctrl *daemon.Controller
	win := overlay.New(conn, renderer, overlay.Handlers{
		Motion: func(p radial.Point) {
			reportInput(logger, "motion", ctrl.CursorMove(p))
		},
		Button: func(button int, p radial.Point) {
			reportInput(logger, "click", ctrl.Click(button, p), "button", button)
		},
		Key: func(name string) {
			reportInput(logger, "key", ctrl.Key(name), "key", name)
		},
	}, slogger(logger, "overlay"))
	defer win.Close()

	hk := hotkeys.NewHandler(conn, slogger(logger, "hotkeys"))
	bindHotkey := func(c *config.Config) {
		hk.UnregisterAll()
		err := hk.Register(c.Hotkey, func() {
			// The X event loop must keep running while the menu grabs input.
			go func() {
				if err := ctrl.Toggle(); err != nil {
					logger.Warn("toggle failed", "err", err)
				}
			}()
		})
		if err != nil {
			logger.Warn("failed to register hotkey", "hotkey", c.Hotkey, "err", err)
		} else if c.Hotkey != "" {
			logger.Info("hotkey registered", "hotkey", c.Hotkey)
		}
	}
	bindHotkey(cfg)

	ctrl = daemon.New(daemon.Options{
		Backend:    backend,
		Overlay:    win,
		Resolver:   registry,
		Config:     cfg,
		ConfigPath: cfgPath,
		OnConfig: func(c *config.Config) {
			renderer.SetTheme(themeFor(c, logger))
			renderer.Icons().Reset()
			logger.SetLevel(parseLevel(c.LogLevel, *verbose))
			bindHotkey(c)
		},
		Logger: slogger(logger, "controller"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		logger.Error("failed to resolve socket path", "err", err)
		return 1
	}
	server := ipc.NewServer(socketPath, ctrl, slogger(logger, "ipc"))
	if err := server.Start(); err != nil {
		logger.Error("failed to start IPC server", "err", err)
		return 1
	}
	defer server.Stop()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: registryInterval,
		Logger:   slogger(logger, "reconciler"),
	}, registry, func() {
		if err := ctrl.RebuildSlots(); err != nil {
			logger.Warn("failed to rebuild slots", "err", err)
		}
	})
	go reconciler.Run(ctx)

	if cfgPath != "" {
		changes, err := config.Watch(ctx, cfgPath, config.DefaultDebounce, slogger(logger, "config"))
		if err != nil {
			logger.Warn("config hot reload disabled", "err", err)
		} else {
			go func() {
				for range changes {
					logger.Debug("config file changed", "path", cfgPath)
					if err := ctrl.Reload(); err != nil && !errors.Is(err, daemon.ErrStopped) {
						logger.Warn("config reload failed", "err", err)
					}
				}
			}()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				logger.Info("received SIGHUP, reloading config")
				if err := ctrl.Reload(); err != nil {
					logger.Warn("config reload failed", "err", err)
				}
			default:
				logger.Info("shutting down", "signal", sig)
				cancel()
				conn.Quit()
				return
			}
		}
	}()

	logger.Info("halo daemon started", "socket", socketPath)
	conn.EventLoop()
	signal.Stop(sigCh)
	return 0
}

// themeFor parses the theme of cfg, falling back to the stock colors.
func themeFor(cfg *config.Config, logger *log.Logger) render.Theme {
	pal, err := cfg.Theme.Palette()
	if err != nil {
		logger.Warn("invalid theme, using defaults", "err", err)
		return render.DefaultTheme()
	}
	return render.Theme(pal)
}

// reportInput logs a failed input event. Events rejected because the
// controller already stopped are expected during shutdown.
func reportInput(logger *log.Logger, event string, err error, keyvals ...any) {
	if err == nil || errors.Is(err, daemon.ErrStopped) {
		return
	}
	logger.Warn(event+" failed", append(keyvals, "err", err)...)
}
