// Command pairtype-server starts the typing race session broker.
//
// It exposes a websocket endpoint for the realtime race protocol, a /gemini
// endpoint returning a freshly generated typing passage, and a health probe.
// Flags control host/port, debug logging, version output, and optional ngrok
// tunneling for sharing a race server during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/pairtype/pairtype-server/api"
	"github.com/pairtype/pairtype-server/config"
	"github.com/pairtype/pairtype-server/game/room"
	"github.com/pairtype/pairtype-server/game/text"
	"github.com/pairtype/pairtype-server/transport/websocket"
)

// Version information
const (
	Version = "1.2.0"
	AppName = "Pairtype Race Server"
)

// Configuration flags control how the server starts. The listening port
// defaults to the PORT environment variable (then 8000); -port overrides it.
var (
	port         = flag.Int("port", 0, "HTTP server port (overrides PORT)")
	host         = flag.String("host", "", "HTTP server host")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  PORT            Listening port (default 8000)\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY  Text generator API key\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_URL      Delegate passage retrieval to this endpoint\n")
		fmt.Fprintf(os.Stderr, "  TEXT_TIMEOUT    Generator call timeout (default 3s)\n")
	}
}

// main parses flags, loads configuration, and runs the HTTP server.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}

	log.Printf("Starting %s v%s", AppName, Version)

	runHTTPServer(cfg)
}

// buildProviders wires the passage providers from configuration. The direct
// generator client backs /gemini; the websocket set-text handler uses the
// delegated endpoint when GEMINI_URL is set, the direct client otherwise.
func buildProviders(cfg config.Config) (direct, relay text.Provider) {
	gemini := text.NewGeminiClient(cfg.GeminiAPIKey, cfg.TextTimeout)

	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set; /gemini will report failures")
		direct = nil
	} else {
		direct = gemini
	}

	relay = direct
	if cfg.GeminiURL != "" {
		log.Printf("Delegating set-text passage retrieval to %s", cfg.GeminiURL)
		relay = text.NewRemoteProvider(cfg.GeminiURL, cfg.TextTimeout)
	}
	return direct, relay
}

// runHTTPServer starts the HTTP server with the websocket hub and, when
// enabled, an ngrok tunnel serving the same handler.
func runHTTPServer(cfg config.Config) {
	direct, relay := buildProviders(cfg)

	registry := room.NewRegistry()
	hub := websocket.NewHub(registry, relay)
	go hub.Run()

	apiServer := api.NewServer(hub, direct)

	addr := fmt.Sprintf("%s:%d", *host, cfg.Port)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     apiServer,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: websocket connections outlive any sane value
		IdleTimeout: 60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("Server is running on port %d", cfg.Port)
		log.Printf("WebSocket: ws://%s/ws", addr)
		log.Printf("Passage endpoint: http://%s/gemini", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Check if ngrok should be enabled (from flag or environment)
	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()

			authToken := *ngrokAuth
			if authToken == "" {
				authToken = os.Getenv("NGROK_AUTHTOKEN")
			}
			if authToken == "" {
				log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
				return
			}

			log.Println("Starting ngrok tunnel...")

			domain := *ngrokDomain
			if domain == "" {
				domain = os.Getenv("NGROK_DOMAIN")
			}

			var tunnel ngrokConfig.Tunnel
			if domain != "" {
				tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
				log.Printf("Using custom ngrok domain: %s", domain)
			} else {
				tunnel = ngrokConfig.HTTPEndpoint()
			}

			tun, err := ngrok.Listen(ctx,
				tunnel,
				ngrok.WithAuthtoken(authToken),
			)
			if err != nil {
				log.Printf("Failed to start ngrok tunnel: %v", err)
				return
			}
			defer func() {
				if err := tun.Close(); err != nil {
					log.Printf("Failed to close ngrok tunnel: %v", err)
				}
			}()

			ngrokURL := tun.URL()
			log.Printf("Ngrok tunnel established: %s", ngrokURL)
			log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)
			log.Printf("  Passage endpoint (ngrok): %s/gemini", ngrokURL)

			if err := http.Serve(tun, apiServer); err != nil && err != http.ErrServerClosed {
				log.Printf("Ngrok server error: %v", err)
			}
			log.Println("Ngrok tunnel closed")
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}
