package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Health probe defaults.
const (
	DefaultHealthInterval    = 100 * time.Millisecond
	DefaultHealthMaxInterval = time.Second
	DefaultHealthCallTimeout = time.Second
)

// HealthProbe polls the standard gRPC health service until a named service
// reports SERVING. An empty Service asks about the server as a whole.
type HealthProbe struct {
	Service     string
	Interval    time.Duration
	MaxInterval time.Duration
	CallTimeout time.Duration
	Logger      *log.Entry
}

func (p HealthProbe) withDefaults() HealthProbe {
	if p.Interval <= 0 {
		p.Interval = DefaultHealthInterval
	}
	if p.MaxInterval < p.Interval {
		p.MaxInterval = max(DefaultHealthMaxInterval, p.Interval)
	}
	if p.CallTimeout <= 0 {
		p.CallTimeout = DefaultHealthCallTimeout
	}
	return p
}

// Wait blocks until the probed service is SERVING or ctx ends. The delay
// between polls doubles up to MaxInterval.
func (p HealthProbe) Wait(ctx context.Context, conn *gogrpc.ClientConn) error {
	if conn == nil {
		return errors.New("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p = p.withDefaults()

	client := grpc_health_v1.NewHealthClient(conn)
	delay := p.Interval
	for attempt := 1; ; attempt++ {
		status, err := p.check(ctx, client)
		if err == nil && status == grpc_health_v1.HealthCheckResponse_SERVING {
			p.log().WithField("attempts", attempt).Debug("gRPC peer serving")
			return nil
		}
		entry := p.log().WithField("attempt", attempt)
		if err != nil {
			entry = entry.WithError(err)
		} else {
			entry = entry.WithField("status", status.String())
		}
		entry.Info("waiting for gRPC health")

		select {
		case <-ctx.Done():
			if err == nil {
				err = fmt.Errorf("last status %s", status)
			}
			return fmt.Errorf("wait for gRPC health of %q: %w (%v)", p.Service, ctx.Err(), err)
		case <-time.After(delay):
		}
		delay = min(delay*2, p.MaxInterval)
	}
}

func (p HealthProbe) check(ctx context.Context, client grpc_health_v1.HealthClient) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.CallTimeout)
	defer cancel()
	resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: p.Service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func (p HealthProbe) log() *log.Entry {
	entry := p.Logger
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	if p.Service != "" {
		entry = entry.WithField("grpc_service", p.Service)
	}
	return entry
}
