// wekbridge: relays browser-captured motion to Wekinator over OSC.
// Capture pages connect over WebSocket; every connection gets its own
// smoothing session.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/go-wekbridge/internal/config"
	"github.com/teslashibe/go-wekbridge/internal/log"
	"github.com/teslashibe/go-wekbridge/pkg/capture"
	"github.com/teslashibe/go-wekbridge/pkg/hub"
	"github.com/teslashibe/go-wekbridge/pkg/wekinator"
)

var (
	version   = "1.0.0"
	port      = flag.Int("port", config.DefaultHTTPPort, "HTTP server port")
	wekHost   = flag.String("wekinator-host", config.DefaultWekinatorHost, "Wekinator OSC host")
	wekPort   = flag.Int("wekinator-port", config.DefaultWekinatorPort, "Wekinator OSC port")
	static    = flag.String("static", "public", "Directory with the capture pages (supplied separately)")
	depth     = flag.Int("smoothing", 1, "Initial smoothing depth (frames averaged)")
	unify     = flag.Bool("unify-empty", false, "Send an all-zero face frame when no face is found")
	autoStart = flag.Bool("auto-start", true, "Start tracking as soon as a capture page connects")
	debug     = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	// Override from environment
	if os.Getenv("PORT") != "" {
		*port = config.HTTPPort()
	}
	if os.Getenv("WEKINATOR_HOST") != "" {
		*wekHost = config.WekinatorHost()
	}
	if os.Getenv("WEKINATOR_PORT") != "" {
		*wekPort = config.WekinatorPort()
	}

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)

	fmt.Println()
	fmt.Println("🎛️  Wekbridge v" + version)
	fmt.Println("   Motion capture → Wekinator relay")
	fmt.Println()

	relay, err := wekinator.New(wekinator.Config{Host: *wekHost, Port: *wekPort})
	if err != nil {
		log.Error("invalid wekinator target", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := hub.New("monitor")
	go monitor.Run(ctx)

	cfg := capture.DefaultConfig()
	cfg.Session.Depth = *depth
	cfg.Session.UnifyEmpty = *unify
	cfg.AutoStart = *autoStart

	server, err := capture.NewServer(cfg, relay, monitor)
	if err != nil {
		log.Error("invalid capture config", "error", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:               "wekbridge",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if *debug {
		app.Use(logger.New())
	}

	server.RegisterRoutes(app)
	server.RegisterAPIRoutes(app.Group("/api"))

	// Health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"version":   version,
			"sessions":  server.SessionCount(),
			"monitors":  monitor.ClientCount(),
			"wekinator": relay.Config().Target(),
		})
	})

	// Metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		stats := server.GetStats()
		osc := relay.GetStats()
		return c.SendString(fmt.Sprintf(`# HELP wekbridge_sessions Connected capture sessions
# TYPE wekbridge_sessions gauge
wekbridge_sessions %d

# HELP wekbridge_messages_received Total capture messages received
# TYPE wekbridge_messages_received counter
wekbridge_messages_received %d

# HELP wekbridge_messages_rejected Total capture messages rejected
# TYPE wekbridge_messages_rejected counter
wekbridge_messages_rejected %d

# HELP wekbridge_osc_sent Total OSC frames sent to Wekinator
# TYPE wekbridge_osc_sent counter
wekbridge_osc_sent %d

# HELP wekbridge_osc_failed Total OSC frames dropped on transport failure
# TYPE wekbridge_osc_failed counter
wekbridge_osc_failed %d

# HELP wekbridge_monitor_dropped Total monitor events dropped
# TYPE wekbridge_monitor_dropped counter
wekbridge_monitor_dropped %d
`, stats.SessionCount, stats.MessagesReceived, stats.Rejected, osc.Sent, osc.Failed, monitor.Dropped()))
	})

	// Capture pages
	if _, err := os.Stat(*static); err == nil {
		app.Static("/", *static)
	} else {
		log.Warn("static directory not found, serving API only", "dir", *static)
	}

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", *port)
		fmt.Printf("🚀 Starting server on %s\n", addr)
		fmt.Printf("   Capture:   ws://localhost:%d/ws/capture\n", *port)
		fmt.Printf("   Monitor:   ws://localhost:%d/ws/monitor\n", *port)
		fmt.Printf("   Sessions:  http://localhost:%d/api/sessions\n", *port)
		fmt.Printf("   Wekinator: osc://%s\n", relay.Config().Target())
		fmt.Println()

		if err := app.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n👋 Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("shutdown error", "error", err)
	}

	fmt.Println("✅ Goodbye!")
}
