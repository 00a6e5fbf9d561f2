// Package main is the entry point for hideme.
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

	"github.com/CageChen/hideme/internal/config"
	"github.com/CageChen/hideme/internal/handler"
	"github.com/CageChen/hideme/internal/logger"
	"github.com/CageChen/hideme/internal/output"
	"github.com/CageChen/hideme/internal/settings"
	"github.com/CageChen/hideme/internal/watcher"
	"github.com/CageChen/hideme/internal/workspace"
	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "hideme: %v\n", err)
		return 2
	}

	color.NoColor = !cfg.UseColors
	log := logger.New(os.Stderr, cfg.UseColors)
	log.SetLevel(cfg.LogLevel)

	store := settings.NewJSONStore(cfg.SettingsFile, cfg.SettingsKey)
	syncer := workspace.New(workspace.FoldersFromConfig(cfg), store,
		workspace.WithMode(cfg.ExcludeMode()),
		workspace.WithIgnoreFile(cfg.IgnoreFile),
		workspace.WithLogger(log),
	)

	if cfg.Status {
		results, err := syncer.Current()
		fmt.Print(output.RenderStatus(cfg.IgnoreFile, results))
		if err != nil {
			log.Error("%v", err)
			return 1
		}
		return 0
	}

	if path := cfg.GetConfigFilePath(); path != "" {
		log.Info("Config file: %s", path)
	}
	log.Info("Mode: %s, %d folder(s):", cfg.ExcludeMode(), len(cfg.Folders))
	for i, f := range cfg.Folders {
		log.Info("  [%d] %s -> %s", i, f.Alias, f.Path)
	}

	if _, err := syncer.Sync(); err != nil {
		log.Error("Sync failed: %v", err)
		if cfg.Once {
			return 1
		}
	}
	if cfg.Once {
		return 0
	}
	if !cfg.Watch && cfg.Port == 0 {
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		roots := make([]string, len(cfg.Folders))
		for i, f := range cfg.Folders {
			roots[i] = f.Path
		}
		w, err := watcher.New(roots, cfg.IgnoreFile, log)
		if err != nil {
			log.Warn("Failed to create file watcher: %v", err)
		} else {
			w.OnChange(func(e watcher.Event) { syncer.HandleChange(e.Path) })
			if err := w.Start(); err != nil {
				log.Warn("Failed to start file watcher: %v", err)
			}
			defer func() { _ = w.Stop() }()
			log.Info("Watching %s for changes", cfg.IgnoreFile)
		}
	}

	var srv *http.Server
	if cfg.Port > 0 {
		srv = newServer(cfg.Port, syncer)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Server failed: %v", err)
				stop()
			}
		}()
		log.Info("Status API at: http://localhost:%d/api/folders", cfg.Port)
	}

	<-ctx.Done()
	log.Info("Shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Server shutdown: %v", err)
		}
	}
	return 0
}

func newServer(port int, syncer *workspace.Syncer) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	ws := handler.NewWSHandler()
	syncer.OnSync(ws.OnSync)
	handler.Register(r, handler.NewStatusHandler(syncer), ws)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
