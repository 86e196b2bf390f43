package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// WaitForServing polls the health service until it reports SERVING or ctx
// ends. Poll intervals back off from 100ms up to one second.
func WaitForServing(ctx context.Context, conn *gogrpc.ClientConn, logf func(string, ...any)) error {
	if conn == nil {
		return errors.New("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := grpc_health_v1.NewHealthClient(conn)
	backoff := 100 * time.Millisecond
	for {
		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{})
		cancel()
		if err == nil && resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			return nil
		}
		if logf != nil {
			if err != nil {
				logf("waiting for health: %v", err)
			} else {
				logf("waiting for health: status %s", resp.GetStatus())
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for health: %w", ctx.Err())
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > time.Second {
			backoff = time.Second
		}
	}
}

// Dial connects to a health side-listener and waits for it to serve, bounded
// by wait when positive. The connection is closed when the wait fails.
func Dial(ctx context.Context, addr string, wait time.Duration, logf func(string, ...any)) (*gogrpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	conn, err := gogrpc.NewClient(
		addr,
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	waitCtx := ctx
	if wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}
	if err := WaitForServing(waitCtx, conn, logf); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
