package grpc

import (
	"context"
	"testing"
	"time"

	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

func TestDialReachesServingServer(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ctx)
	}()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dialCancel()

	conn, err := Dial(dialCtx, srv.Addr(), time.Second, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close conn: %v", err)
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestDialFailsWhenNotServing(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer srv.Close()
	srv.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = srv.Serve(ctx)
	}()

	conn, err := Dial(context.Background(), srv.Addr(), 300*time.Millisecond, nil)
	if err == nil {
		_ = conn.Close()
		t.Fatal("expected error for NOT_SERVING server")
	}
	if conn != nil {
		t.Fatal("expected nil connection on error")
	}
}

func TestWaitForServingTransitions(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer srv.Close()
	srv.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = srv.Serve(ctx)
	}()

	go func() {
		time.Sleep(200 * time.Millisecond)
		srv.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	}()

	conn, err := Dial(context.Background(), srv.Addr(), 0, nil)
	if err != nil {
		t.Fatalf("dial without wait bound: %v", err)
	}
	defer conn.Close()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if err := WaitForServing(waitCtx, conn, nil); err != nil {
		t.Fatalf("wait for serving after transition: %v", err)
	}
}

func TestWaitForServingNilConn(t *testing.T) {
	if err := WaitForServing(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for nil connection")
	}
}
