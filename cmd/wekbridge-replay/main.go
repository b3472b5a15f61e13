// wekbridge-replay: a synthetic capture client. It streams a generated
// body, face and device orientation to a running wekbridge server so the
// Wekinator wiring can be checked without a browser or camera.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-wekbridge/internal/config"
	"github.com/teslashibe/go-wekbridge/internal/log"
	"github.com/teslashibe/go-wekbridge/pkg/protocol"
)

var (
	url        = flag.String("url", config.DefaultRelayURL, "Capture WebSocket URL")
	modalities = flag.String("modalities", "body,face,orientation", "Comma-separated modalities to send")
	rate       = flag.Duration("rate", 100*time.Millisecond, "Send period")
	duration   = flag.Duration("duration", 0, "Stop after this long (0 runs until Ctrl+C)")
	depth      = flag.Int("smoothing", 0, "Request this smoothing depth on connect (0 keeps the server default)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if os.Getenv("RELAY_URL") != "" {
		*url = config.RelayURL()
	}

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)

	send := map[string]bool{}
	for _, m := range strings.Split(*modalities, ",") {
		send[strings.TrimSpace(m)] = true
	}

	fmt.Println()
	fmt.Println("🎬 Wekbridge Replay")
	fmt.Printf("   Target: %s (%s every %s)\n", *url, *modalities, *rate)
	fmt.Println()

	ws, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		fmt.Printf("❌ Dial error: %v\n", err)
		os.Exit(1)
	}
	defer ws.Close()

	// Replies from the server
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				log.Debug("read ended", "error", err)
				return
			}
			report(data)
		}
	}()

	if *depth > 0 {
		if err := write(ws, protocol.TypeSmoothing, protocol.SmoothingData{Depth: *depth}); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}

	ticker := time.NewTicker(*rate)
	defer ticker.Stop()

	start := time.Now()
	sent := 0

loop:
	for {
		select {
		case <-quit:
			break loop
		case <-deadline:
			break loop
		case <-closed:
			fmt.Println("⚠️  Server closed the connection")
			break loop
		case now := <-ticker.C:
			t := now.Sub(start).Seconds()
			var err error
			if send["body"] && err == nil {
				err = write(ws, protocol.TypeBodyPose, bodyPose(t))
			}
			if send["face"] && err == nil {
				err = write(ws, protocol.TypeFacePose, facePose(t))
			}
			if send["orientation"] && err == nil {
				err = write(ws, protocol.TypeDeviceOrientation, deviceOrientation(t))
			}
			if err != nil {
				fmt.Printf("❌ Write error: %v\n", err)
				break loop
			}
			sent++
		}
	}

	write(ws, protocol.TypeStop, nil)
	ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	fmt.Printf("\n📊 Sent %d ticks in %s\n", sent, time.Since(start).Round(time.Millisecond))
	fmt.Println("👋 Goodbye!")
}

func write(ws *websocket.Conn, t protocol.MessageType, data interface{}) error {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		return err
	}
	raw, err := msg.Bytes()
	if err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, raw)
}

func report(data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		log.Warn("unparseable reply", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeAck:
		var ack protocol.AckData
		if msg.ParseData(&ack) == nil {
			fmt.Printf("✅ %s: session=%s tracking=%v depth=%d\n", ack.For, ack.SessionID, ack.Tracking, ack.Depth)
		}
	case protocol.TypeError:
		var e protocol.ErrorData
		if msg.ParseData(&e) == nil {
			fmt.Printf("❌ %s: %s\n", e.For, e.Error)
		}
	case protocol.TypeClear:
		log.Debug("display cleared")
	default:
		log.Debug("reply", "type", msg.Type)
	}
}
