package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"testing"
	"time"

	"etf-advisor/internal/config"
	"etf-advisor/internal/job"
	"etf-advisor/pkg/tracing"

	"github.com/charmbracelet/ssh"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
)

func TestMainBootstrap(t *testing.T) {
	restore := stubSSHDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubSSHDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origConnectRedis := connectRedisFunc
	origInitTracer := initTracerFunc
	origStartRefresher := startRefresherFunc
	origNewWishServer := newWishServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			AdvisorAPIURL:  "http://127.0.0.1:0/api",
			TickMillis:     500,
			TickMaxStep:    10,
			InvestmentStep: 100,
			SSHPort:        2222,
			SSHHostKeyPath: ".ssh/test_key",
		}
	}
	connectRedisFunc = func(context.Context, string, zerolog.Logger) (*redis.Client, error) { return nil, nil }
	initTracerFunc = func(context.Context, tracing.Options) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	startRefresherFunc = func(*job.CatalogRefresher, context.Context) {}
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		return nil, nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		connectRedisFunc = origConnectRedis
		initTracerFunc = origInitTracer
		startRefresherFunc = origStartRefresher
		newWishServerFunc = origNewWishServer
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	}
}

// fakeContext implements only the ssh.Context methods authorizeKey uses.
type fakeContext struct {
	ssh.Context
	user   string
	values map[any]any
}

func (f *fakeContext) User() string            { return f.user }
func (f *fakeContext) SetValue(key, value any) { f.values[key] = value }
func (f *fakeContext) Value(key any) any       { return f.values[key] }

func newKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrap key: %v", err)
	}
	return key
}

func TestAuthorizeKeyAcceptsAllWithoutAllowlist(t *testing.T) {
	key := newKey(t)
	ctx := &fakeContext{user: "alice", values: map[any]any{}}

	if !authorizeKey(nil, zerolog.Nop())(ctx, key) {
		t.Fatal("expected key to be accepted")
	}
	if got := ctx.values[sshFingerprintKey]; got != gossh.FingerprintSHA256(key) {
		t.Fatalf("expected fingerprint on context, got %v", got)
	}
}

func TestAuthorizeKeyAllowlist(t *testing.T) {
	allowed, other := newKey(t), newKey(t)
	auth := authorizeKey([]string{gossh.FingerprintSHA256(allowed)}, zerolog.Nop())

	if !auth(&fakeContext{values: map[any]any{}}, allowed) {
		t.Fatal("expected allowlisted key to be accepted")
	}
	ctx := &fakeContext{values: map[any]any{}}
	if auth(ctx, other) {
		t.Fatal("expected unknown key to be denied")
	}
	if _, ok := ctx.values[sshFingerprintKey]; ok {
		t.Fatal("denied key should not be recorded")
	}
}
