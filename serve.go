package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/adc-hub/api"
	"github.com/wricardo/adc-hub/internal/logging"
	"github.com/wricardo/adc-hub/transport/mcp"
	"github.com/wricardo/adc-hub/transport/websocket"
)

const externalAPIURL = "http://localhost:8080"

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "Run the HTTP server with REST API, WebSocket live views and the /mcp endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Override server.host"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Override server.port"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Expose the server through an ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if host := cmd.String("host"); host != "" {
				svc.cfg.Server.Host = host
			}
			if port := cmd.Int("port"); port > 0 {
				svc.cfg.Server.Port = int(port)
			}
			if cmd.Bool("ngrok") {
				svc.cfg.Ngrok.Enabled = true
			}
			if domain := cmd.String("ngrok-domain"); domain != "" {
				svc.cfg.Ngrok.Domain = domain
			}
			return runHTTPServer(ctx, svc)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run an MCP stdio server, reusing a local API server or starting an internal one",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Value: externalAPIURL,
				Usage: "API server to reuse when it is reachable",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			return runStdioMCPWithInternalServer(ctx, svc, cmd.String("api-url"))
		},
	}
}

// newHub starts a WebSocket hub counting viewers when metrics are enabled
func (s *services) newHub(ctx context.Context) *websocket.Hub {
	var gauge websocket.Gauge
	if s.metrics != nil {
		gauge = s.metrics.WebSocketClients
	}
	hub := websocket.NewHub(logging.Component(s.log, "websocket"), gauge)
	go hub.Run(ctx)
	return hub
}

func (s *services) newAPIServer(hub *websocket.Hub) *api.Server {
	return api.NewServer(api.Options{
		Scores:   s.scores,
		Lookup:   s.lookup,
		Settings: s.settings,
		Hub:      hub,
		Metrics:  s.metrics,
		Logger:   logging.Component(s.log, "api"),
	})
}

// mcpHandler serves single JSON-RPC messages over HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
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

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer serves the API until ctx is cancelled, then shuts down gracefully.
// Background routines expire idle scoresheets and keep the world-skills cache warm.
func runHTTPServer(ctx context.Context, svc *services) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := svc.log
	addr := svc.cfg.Addr()

	hub := svc.newHub(ctx)
	apiServer := svc.newAPIServer(hub)

	// The /mcp endpoint proxies back into this same server
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", loopbackAddr(addr)))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("version", Version).
			Msgf("HTTP server listening (REST http://%s/api, WebSocket ws://%s/ws?sheet=<id>, MCP http://%s/mcp)", addr, addr, addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	wg.Add(2)
	go func() {
		defer wg.Done()
		sheetCleanupRoutine(ctx, svc)
	}()
	go func() {
		defer wg.Done()
		worldSkillsRefreshRoutine(ctx, svc)
	}()

	if svc.cfg.Ngrok.Enabled || envEnabled("NGROK_ENABLED") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, svc, mainRouter)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("HTTP server stopped")
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("Server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is cancelled
func runNgrokTunnel(ctx context.Context, svc *services, handler http.Handler) {
	log := logging.Component(svc.log, "ngrok")

	// Support both naming conventions of the ngrok agent
	authToken := firstNonEmpty(svc.cfg.Ngrok.AuthToken, os.Getenv("NGROK_AUTHTOKEN"), os.Getenv("NGROK_AUTH_TOKEN"))
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (set ngrok.auth_token, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	domain := firstNonEmpty(svc.cfg.Ngrok.Domain, os.Getenv("NGROK_DOMAIN"))

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("Failed to start ngrok tunnel")
		return
	}

	// http.Serve only returns once the listener is closed
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().
		Str("url", url).
		Msgf("Ngrok tunnel established (REST %s/api, MCP %s/mcp)", url, url)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("Ngrok server error")
	}
	log.Info().Msg("Ngrok tunnel closed")
}

// sheetCleanupRoutine removes scoresheets that have not been touched within sheets.max_age
func sheetCleanupRoutine(ctx context.Context, svc *services) {
	interval := svc.cfg.Sheets.CleanupInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := svc.sheets.CleanupExpiredSessions(svc.cfg.Sheets.MaxAge); removed > 0 {
				svc.log.Info().Int("removed", removed).Msg("Cleaned up expired scoresheets")
			}
		}
	}
}

// worldSkillsRefreshRoutine reloads the selected season's leaderboards in the background
func worldSkillsRefreshRoutine(ctx context.Context, svc *services) {
	interval := svc.cfg.WorldSkills.RefreshInterval
	if interval <= 0 || svc.cfg.RobotEvents.Token == "" {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.lookup.RefreshWorldSkills(ctx, 0); err != nil && ctx.Err() == nil {
				svc.log.Warn().Err(err).Msg("World skills refresh failed")
			}
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses the API at externalURL when reachable; otherwise it starts an
// internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, svc *services, externalURL string) error {
	log := svc.log
	var baseURL string

	log.Info().Str("url", externalURL).Msg("Checking for external API server")

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/healthz")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info().Str("url", externalURL).Msg("External API server found, using it for MCP")
		baseURL = externalURL
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		log.Info().Msg("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		hub := svc.newHub(ctx)
		httpServer := &http.Server{Handler: svc.newAPIServer(hub)}

		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Info().Str("url", baseURL).Msg("Internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// loopbackAddr turns a wildcard listen address into one a local client can dial
func loopbackAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

func envEnabled(key string) bool {
	v := os.Getenv(key)
	return v == "true" || v == "1"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
