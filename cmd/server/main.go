package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"netcanvas/internal/adapter"
	"netcanvas/internal/asset"
	"netcanvas/internal/config"
	"netcanvas/internal/handler"
	"netcanvas/internal/hub"
	"netcanvas/internal/raster"
	"netcanvas/internal/repository/sqlite"
	"netcanvas/internal/service"
	"netcanvas/internal/snapshot"
	"netcanvas/internal/watcher"
)

//go:embed web/*
var webFS embed.FS

func main() {
	configPath := flag.String("config", "", "Config file path (default: $NETCANVAS_CONFIG, ./netcanvas.yaml, ~/.config/netcanvas, /etc/netcanvas)")
	envFile := flag.String("env", ".env", "dotenv file loaded before the config")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting netcanvas server...")

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to load %s: %v", *envFile, err)
	}

	cfg, loadedFrom, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if loadedFrom != "" {
		log.Printf("Config loaded from %s", loadedFrom)
	} else {
		log.Println("No config file found, using defaults")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if hash := os.Getenv("NETCANVAS_PASSWORD_HASH"); hash != "" {
		cfg.Server.Auth.PasswordHash = hash
		if cfg.Server.Auth.Username == "" {
			cfg.Server.Auth.Username = "admin"
		}
	}
	log.Print(cfg.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	eventBus := service.NewEventBus()

	// SSE hub fed from the event bus
	sseHub := hub.New()
	go sseHub.Run(ctx)

	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(hub.Message{
				Name:    string(event.Type),
				MapID:   event.MapID,
				Payload: event.Payload,
			})
		}
	}()

	sessionCfg, err := buildSessionConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to configure canvas: %v", err)
	}

	mapSvc := service.NewMapService(repo, eventBus)
	sessions := service.NewSessionManager(mapSvc, eventBus, sessionCfg)
	reconcileSvc := service.NewReconcileService(mapSvc)

	// Scene files: import once, then follow edits
	sceneWatcher := watcher.New(cfg.Scenes, func(ctx context.Context, sc config.SceneConfig) error {
		_, err := mapSvc.ImportFile(ctx, sc.Path, sc.MapID, sc.Format, sc.ReadOnly)
		return err
	}).WithDebounce(cfg.Watcher.Debounce.Duration())

	if err := sceneWatcher.ImportAll(ctx); err != nil {
		log.Printf("Warning: some scene files failed to import: %v", err)
	}
	if len(cfg.Scenes) > 0 {
		go func() {
			if err := sceneWatcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Scene watcher stopped: %v", err)
			}
		}()
	}

	// Status poller
	registry := adapter.NewRegistry(reconcileSvc.Reconcile)
	if cfg.Status.Enabled {
		behavior := cfg.EffectiveBehavior()
		opts := []adapter.NmapOption{adapter.WithProfile(behavior)}
		if cfg.Status.Ports != "" {
			opts = append(opts, adapter.WithPortRange(cfg.Status.Ports))
		}
		nmapAdapter := adapter.NewNmapAdapter(mapSvc, opts...)
		if err := registry.Register(nmapAdapter, adapter.AdapterConfig{
			Enabled:       true,
			PollInterval:  nmapAdapter.Interval(),
			JitterPercent: behavior.JitterPercent,
		}); err != nil {
			log.Printf("Warning: failed to register status adapter: %v", err)
		}
	}
	if err := registry.Start(ctx); err != nil {
		log.Printf("Warning: Failed to start adapter registry: %v", err)
	}

	mapHandler := handler.NewMapHandler(mapSvc, sessions)
	if cfg.Status.Enabled {
		mapHandler.SetStatusTrigger(registry)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	mapHandler.Routes(r)
	r.Method(http.MethodGet, "/events", sseHub)

	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		log.Fatalf("Failed to get embedded web content: %v", err)
	}
	r.Handle("/*", http.FileServer(http.FS(webContent)))

	mws := []handler.Middleware{handler.CORS}
	if cfg.Server.Auth.Enabled() {
		mws = append(mws, handler.BasicAuth("netcanvas", cfg.Server.Auth.Username, cfg.Server.Auth.PasswordHash))
		log.Printf("Basic auth enabled for user %s", cfg.Server.Auth.Username)
	}

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler.Chain(r, mws...),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /events streams stay open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := registry.Stop(); err != nil {
		log.Printf("Adapter registry shutdown error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	sessions.CloseAll()
	eventBus.Unsubscribe(eventChan)
	close(eventChan)

	log.Println("Server stopped")
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// buildSessionConfig turns the canvas, palette and asset settings into what
// every session is created with
func buildSessionConfig(cfg *config.Config) (service.SessionConfig, error) {
	glyphs, err := cfg.GlyphTable()
	if err != nil {
		return service.SessionConfig{}, err
	}

	fetchTimeout := cfg.Assets.FetchTimeout.Duration()
	sc := service.SessionConfig{
		Width:             cfg.Canvas.Width,
		Height:            cfg.Canvas.Height,
		Glyphs:            glyphs,
		Colors:            cfg.ColorTable(),
		NativeContextMenu: cfg.Canvas.NativeContextMenu,
		Fetcher: asset.New(
			asset.WithHTTPClient(&http.Client{Timeout: fetchTimeout}),
			asset.WithRoot(cfg.Assets.Root),
		),
		Snapshots: snapshot.New(),
		AssetWait: fetchTimeout,
	}

	if cfg.Canvas.IconFont != "" {
		f, err := raster.LoadFont(cfg.Canvas.IconFont)
		if err != nil {
			return service.SessionConfig{}, err
		}
		sc.SurfaceOptions = append(sc.SurfaceOptions, raster.WithIconFont(f))
		log.Printf("Icon font loaded: %s", cfg.Canvas.IconFont)
	}

	return sc, nil
}
