// Command pathboard serves the path board game.
//
// Commands:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" runs a game in the terminal
//
// Flags default from PATHBOARD_* environment variables, which may also be set
// in a .env file. Sessions are stored as JSON files, in SQLite or only in memory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/pathboard/api"
	"github.com/wricardo/mcp-training/pathboard/game/config"
	"github.com/wricardo/mcp-training/pathboard/game/engine"
	"github.com/wricardo/mcp-training/pathboard/game/service"
	"github.com/wricardo/mcp-training/pathboard/game/session"
	"github.com/wricardo/mcp-training/pathboard/transport/mcp"
	"github.com/wricardo/mcp-training/pathboard/transport/terminal"
	"github.com/wricardo/mcp-training/pathboard/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Path Board Game Server"
)

const sqliteFile = "pathboard.db"

// options are the resolved command line settings
type options struct {
	Host       string
	Port       int
	ConfigDir  string
	DataDir    string
	Storage    string
	SessionTTL time.Duration
	Debug      bool

	NgrokEnabled bool
	NgrokAuth    string
	NgrokDomain  string
}

// main loads the environment, builds the command tree and runs it until a signal arrives.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(settings).Run(ctx, os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// newApp builds the command tree. Flag defaults come from settings.
func newApp(settings config.Settings) *cli.Command {
	return &cli.Command{
		Name:    "pathboard",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: settings.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: settings.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Value: settings.ConfigDir, Usage: "Directory containing task presets"},
			&cli.StringFlag{Name: "data-dir", Value: settings.DataDir, Usage: "Directory for saved sessions"},
			&cli.StringFlag{Name: "storage", Value: settings.Storage, Usage: "Session storage: file, sqlite or memory"},
			&cli.DurationFlag{Name: "session-ttl", Value: settings.SessionTTL, Usage: "Drop sessions idle for longer than this"},
			&cli.BoolFlag{Name: "debug", Value: settings.Debug, Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Value: settings.NgrokEnabled, Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Value: settings.NgrokAuthToken, Usage: "Ngrok auth token"},
			&cli.StringFlag{Name: "ngrok-domain", Value: settings.NgrokDomain, Usage: "Custom ngrok domain (optional)"},
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  serverAction,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  stdioAction,
			},
			{
				Name:  "play",
				Usage: "Play a game in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "preset", Usage: "Task preset to play (default preset when empty)"},
					&cli.IntFlag{Name: "seed", Usage: "Seed for a reproducible board and dice"},
					&cli.IntFlag{Name: "cell-width", Value: terminal.DefaultCellWidth, Usage: "Columns per board cell"},
				},
				Action: playAction,
			},
		},
		Action: serverAction,
	}
}

func optionsFrom(cmd *cli.Command) (options, error) {
	opts := options{
		Host:         cmd.String("host"),
		Port:         int(cmd.Int("port")),
		ConfigDir:    cmd.String("config-dir"),
		DataDir:      cmd.String("data-dir"),
		Storage:      cmd.String("storage"),
		SessionTTL:   cmd.Duration("session-ttl"),
		Debug:        cmd.Bool("debug"),
		NgrokEnabled: cmd.Bool("ngrok"),
		NgrokAuth:    cmd.String("ngrok-auth"),
		NgrokDomain:  cmd.String("ngrok-domain"),
	}

	check := config.Settings{Port: opts.Port, Storage: opts.Storage, SessionTTL: opts.SessionTTL}
	if err := check.Validate(); err != nil {
		return options{}, err
	}

	// Setup logging
	if opts.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	return opts, nil
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := optionsFrom(cmd)
	if err != nil {
		return err
	}
	log.Printf("Starting %s v%s (mode: server)", AppName, Version)

	svc, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	svc.startBackground(ctx, opts.SessionTTL)
	return runHTTPServer(ctx, opts, svc.game)
}

func stdioAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := optionsFrom(cmd)
	if err != nil {
		return err
	}
	log.Printf("Starting %s v%s (mode: stdio-mcp)", AppName, Version)

	svc, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	svc.startBackground(ctx, opts.SessionTTL)
	return runStdioMCPWithInternalServer(ctx, opts, svc.game)
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := optionsFrom(cmd)
	if err != nil {
		return err
	}

	configs, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	preset := configs.GetDefault()
	if id := cmd.String("preset"); id != "" {
		if preset, err = configs.LoadConfig(id); err != nil {
			return err
		}
	}

	var engineOpts []engine.Option
	if cmd.IsSet("seed") {
		engineOpts = append(engineOpts, engine.WithSeed(int64(cmd.Int("seed"))))
	}

	game, err := engine.NewEngine(preset, engineOpts...)
	if err != nil {
		return err
	}

	fmt.Println(terminal.TitleStyle.Render(fmt.Sprintf("%s: %s", preset.Name, preset.Description)))
	return terminal.Play(ctx, os.Stdin, os.Stdout, game, terminal.CellWidth(cmd.Int("cell-width")))
}

// services holds the wired game service and what is needed to run and stop it
type services struct {
	game     service.GameService
	sessions *session.Manager
	storage  string
	closer   io.Closer
}

// Close releases the session store
func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Printf("Warning: Failed to save sessions: %v", err)
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			log.Printf("Warning: Failed to close session storage: %v", err)
		}
	}
}

// startBackground runs the expiry and storage sync routines until ctx is done
func (s *services) startBackground(ctx context.Context, ttl time.Duration) {
	go sessionCleanupRoutine(ctx, s.sessions, ttl)
	if s.storage != config.StorageMemory {
		go persistenceSyncRoutine(ctx, s.sessions)
	}
}

// initializeServices wires the config manager, the session store selected by
// opts.Storage and the game service, then loads persisted sessions.
func initializeServices(opts options) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	svc := &services{storage: opts.Storage}

	switch opts.Storage {
	case config.StorageMemory:
		svc.sessions = session.NewManager()

	case config.StorageSQLite:
		if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		persistence, err := session.NewSQLitePersistence(filepath.Join(opts.DataDir, sqliteFile))
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		svc.sessions = session.NewManagerWithPersistence(persistence)
		svc.closer = persistence

	case config.StorageFile:
		persistence, err := session.NewFilePersistence(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svc.sessions = session.NewManagerWithPersistence(persistence)

	default:
		return nil, fmt.Errorf("%w: unknown storage %q", config.ErrInvalidConfig, opts.Storage)
	}

	// Load persisted sessions on startup
	if err := svc.sessions.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	svc.game = service.NewGameService(svc.sessions, configManager)
	return svc, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// persistenceSyncRoutine drops in-memory sessions whose stored copy was
// deleted outside the server.
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := manager.SyncWithPersistence(); pruned > 0 {
				log.Printf("Storage sync: pruned %d orphaned sessions from memory", pruned)
			}
		}
	}
}

// mcpHandler serves single MCP JSON-RPC messages over HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the REST API, the WebSocket endpoint and /mcp on one mux
func newRouter(gameService service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub))
	mainRouter.HandleFunc("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return mainRouter
}

// runHTTPServer serves until ctx is cancelled. If ngrok is enabled it also
// provisions a public tunnel.
func runHTTPServer(ctx context.Context, opts options, gameService service.GameService) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	mainRouter := newRouter(gameService, hub, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	if opts.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, mainRouter)
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler) {
	authToken := opts.NgrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTH_TOKEN") // Also support underscore version
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		log.Printf("Using custom ngrok domain: %s", opts.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an API
// already listening on the configured port, otherwise it starts an internal
// HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, opts options, gameService service.GameService) error {
	baseURL := externalAPI(opts.Port)

	if baseURL == "" {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
		log.Println("MCP stdio server ready (using internal HTTP server)")
	} else {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// externalAPI returns the base URL of a game server on port, or "" when none answers
func externalAPI(port int) string {
	externalURL := fmt.Sprintf("http://localhost:%d", port)
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err != nil {
		return ""
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	return externalURL
}
