// wekbridge-cam: tracks a face with a local camera and relays it to
// Wekinator without a browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-wekbridge/internal/config"
	"github.com/teslashibe/go-wekbridge/internal/log"
	"github.com/teslashibe/go-wekbridge/pkg/detection"
	"github.com/teslashibe/go-wekbridge/pkg/motion"
	"github.com/teslashibe/go-wekbridge/pkg/session"
	"github.com/teslashibe/go-wekbridge/pkg/wekinator"
)

var (
	device   = flag.String("device", "0", "Camera index or stream URL")
	model    = flag.String("model", detection.DefaultConfig().ModelPath, "YuNet ONNX model path")
	minScore = flag.Float64("min-score", detection.DefaultConfig().ConfidenceThresh, "Minimum face confidence")
	wekHost  = flag.String("wekinator-host", config.DefaultWekinatorHost, "Wekinator OSC host")
	wekPort  = flag.Int("wekinator-port", config.DefaultWekinatorPort, "Wekinator OSC port")
	interval = flag.Duration("interval", session.DefaultConfig().TickInterval, "Capture period")
	depth    = flag.Int("smoothing", 1, "Smoothing depth (frames averaged)")
	unify    = flag.Bool("unify-empty", false, "Send an all-zero frame when no face is found")
	debug    = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

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
	fmt.Println("📷 Wekbridge Cam")
	fmt.Printf("   Camera: %s → osc://%s:%d%s\n", *device, *wekHost, *wekPort, wekinator.FaceAddress)
	fmt.Println()

	detCfg := detection.DefaultConfig()
	detCfg.ModelPath = *model
	detCfg.ConfidenceThresh = *minScore

	detector, err := detection.NewYuNet(detCfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	defer detector.Close()

	relay, err := wekinator.New(wekinator.Config{Host: *wekHost, Port: *wekPort})
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	sess, err := session.New("camera", session.Config{
		TickInterval: *interval,
		Depth:        *depth,
		UnifyEmpty:   *unify,
	}, relay)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	sess.SetFaceSource(detection.NewCameraFaceSource(*device, detector))
	sess.OnFrame = func(id string, e motion.Encoded) {
		log.Debug("face frame", "values", e.Values)
	}
	sess.OnClear = func(id string, m motion.Modality) {
		log.Debug("no face")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sess.Start(ctx); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		sess.Run(ctx)
		close(done)
	}()

	fmt.Println("🔄 Tracking (Ctrl+C to stop)")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	sess.Stop()

	stats := sess.GetStats()
	osc := relay.GetStats()
	fmt.Printf("\n📊 %d ticks, %d sent, %d cleared, %d aborted, %d OSC failures\n",
		stats.Ticks, osc.Sent, stats.Cleared, stats.Aborted, osc.Failed)
	fmt.Println("👋 Goodbye!")
}
