package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func stubRedis(t *testing.T, pingErr error) *string {
	t.Helper()
	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
	})

	var capturedAddr string
	newRedisClient = func(opts *redis.Options) *redis.Client {
		capturedAddr = opts.Addr
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return pingErr
	}
	return &capturedAddr
}

func TestConnectWithAddr(t *testing.T) {
	addr := stubRedis(t, nil)

	client, err := Connect(context.Background(), "redis:9999", zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil || *addr != "redis:9999" {
		t.Fatalf("expected custom addr, got %s", *addr)
	}
	_ = client.Close()
}

func TestConnectWithURL(t *testing.T) {
	addr := stubRedis(t, nil)

	client, err := Connect(context.Background(), "redis://cache.internal:6380/2", zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *addr != "cache.internal:6380" {
		t.Fatalf("expected parsed addr, got %s", *addr)
	}
	_ = client.Close()
}

func TestConnectEmptyDisablesMirror(t *testing.T) {
	addr := stubRedis(t, nil)

	client, err := Connect(context.Background(), "  ", zerolog.Nop())
	if err != nil || client != nil {
		t.Fatalf("expected nil client and no error, got %v %v", client, err)
	}
	if *addr != "" {
		t.Fatal("no client should be constructed")
	}
}

func TestConnectPingFailure(t *testing.T) {
	stubRedis(t, errors.New("connection refused"))

	if _, err := Connect(context.Background(), "redis:9999", zerolog.Nop()); err == nil {
		t.Fatal("expected ping error")
	}
}
