// Package wekinator forwards encoded motion frames to Wekinator as OSC
// messages over UDP.
package wekinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/hypebeast/go-osc/osc"
	"github.com/teslashibe/go-wekbridge/internal/log"
	"github.com/teslashibe/go-wekbridge/pkg/motion"
)

// OSC input addresses, one per modality
const (
	FaceAddress        = "/wek/inputs/face"
	BodyAddress        = "/wek/inputs/body"
	OrientationAddress = "/wek/inputs/orientation"
)

// ErrUnknownModality is returned for frames without a known OSC address
var ErrUnknownModality = errors.New("wekinator: no address for modality")

// TransportError wraps a failed send
type TransportError struct {
	Address string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("wekinator: send %s: %v", e.Address, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Address returns the OSC address for a modality
func Address(m motion.Modality) (string, error) {
	switch m {
	case motion.Face:
		return FaceAddress, nil
	case motion.Body:
		return BodyAddress, nil
	case motion.Orientation:
		return OrientationAddress, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModality, m)
}

// NewMessage builds the OSC message for an encoded frame.
// Every value is sent as a float32 argument.
func NewMessage(e motion.Encoded) (*osc.Message, error) {
	addr, err := Address(e.Modality)
	if err != nil {
		return nil, err
	}
	msg := osc.NewMessage(addr)
	for _, v := range e.Values {
		msg.Append(v)
	}
	return msg, nil
}

// Stats contains relay counters
type Stats struct {
	Sent   uint64 `json:"sent"`
	Failed uint64 `json:"failed"`
}

// Relay sends each frame immediately, with no queue and no retry
type Relay struct {
	config Config
	client *osc.Client
	log    *slog.Logger

	sent   atomic.Uint64
	failed atomic.Uint64
}

// New creates a relay for the configured Wekinator host and port
func New(cfg Config) (*Relay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Relay{
		config: cfg,
		client: osc.NewClient(cfg.Host, cfg.Port),
		log:    log.With("component", "wekinator", "target", cfg.Target()),
	}, nil
}

// Config returns the relay configuration
func (r *Relay) Config() Config {
	return r.config
}

// Send forwards one encoded frame. Failures are counted and returned as a
// *TransportError; the frame is not retried.
func (r *Relay) Send(ctx context.Context, e motion.Encoded) error {
	msg, err := NewMessage(e)
	if err != nil {
		r.failed.Add(1)
		return err
	}

	if err := ctx.Err(); err != nil {
		r.failed.Add(1)
		return &TransportError{Address: msg.Address, Err: err}
	}

	if err := r.client.Send(msg); err != nil {
		r.failed.Add(1)
		return &TransportError{Address: msg.Address, Err: err}
	}

	r.sent.Add(1)
	r.log.Debug("sent", "address", msg.Address, "values", len(e.Values))
	return nil
}

// GetStats returns relay counters
func (r *Relay) GetStats() Stats {
	return Stats{
		Sent:   r.sent.Load(),
		Failed: r.failed.Load(),
	}
}
