// Package catalog keeps the last successfully fetched model catalog and checks
// model selections against it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"etf-advisor/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	mirrorKey        = "catalog:models"
	defaultMirrorTTL = 5 * time.Minute
)

// Lister fetches the catalog from the recommendation service.
type Lister interface {
	ListModels(ctx context.Context) ([]domain.LLMModel, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Role names the three model slots of an AdvisorRequest.
type Role string

const (
	RoleInvestment Role = "investment_model"
	RolePortfolio  Role = "portfolio_model"
	RoleAnalyst    Role = "analyst_model"
)

func Roles() []Role {
	return []Role{RoleInvestment, RolePortfolio, RoleAnalyst}
}

// Selection holds the model id chosen for each role.
type Selection struct {
	Investment string
	Portfolio  string
	Analyst    string
}

func (s Selection) Get(role Role) string {
	switch role {
	case RoleInvestment:
		return s.Investment
	case RolePortfolio:
		return s.Portfolio
	case RoleAnalyst:
		return s.Analyst
	}
	return ""
}

func (s *Selection) Set(role Role, id string) {
	switch role {
	case RoleInvestment:
		s.Investment = id
	case RolePortfolio:
		s.Portfolio = id
	case RoleAnalyst:
		s.Analyst = id
	}
}

// Request builds the wire request for pref.
func (s Selection) Request(pref domain.PortfolioPreference) domain.AdvisorRequest {
	return domain.AdvisorRequest{
		Preferences:     pref,
		InvestmentModel: s.Investment,
		PortfolioModel:  s.Portfolio,
		AnalystModel:    s.Analyst,
	}
}

type UnknownModelError struct {
	Role Role
	ID   string
}

func (e *UnknownModelError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("no model selected for %s", e.Role)
	}
	return fmt.Sprintf("unknown model %q for %s", e.ID, e.Role)
}

type Catalog struct {
	lister Lister
	tracer trace.Tracer
	log    zerolog.Logger
	redis  RedisClient
	ttl    time.Duration

	mu        sync.RWMutex
	models    []domain.LLMModel
	fetchedAt time.Time
}

type Option func(*Catalog)

// WithRedis mirrors every successful refresh under catalog:models so other
// processes can warm from it.
func WithRedis(client RedisClient, ttl time.Duration) Option {
	return func(c *Catalog) {
		c.redis = client
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Catalog) {
		c.log = log.With().Str("component", "catalog").Logger()
	}
}

func New(lister Lister, tracer trace.Tracer, opts ...Option) *Catalog {
	c := &Catalog{
		lister: lister,
		tracer: tracer,
		log:    zerolog.Nop(),
		ttl:    defaultMirrorTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh replaces the snapshot on success and keeps the previous one on failure.
func (c *Catalog) Refresh(ctx context.Context) ([]domain.LLMModel, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.refresh")
	defer span.End()

	models, err := c.lister.ListModels(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	c.store(models, time.Now())
	span.SetAttributes(attribute.Int("catalog.model_count", len(models)))

	if c.redis != nil {
		if err := c.writeMirror(ctx, models); err != nil {
			c.log.Warn().Err(err).Msg("catalog mirror write failed")
		}
	}
	return c.Models(), nil
}

// Warm seeds an empty snapshot from the redis mirror. It is a no-op when a
// snapshot already exists or no mirror is configured.
func (c *Catalog) Warm(ctx context.Context) error {
	if c.redis == nil || !c.FetchedAt().IsZero() {
		return nil
	}
	data, err := c.redis.Get(ctx, mirrorKey).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read catalog mirror: %w", err)
	}
	var mirror struct {
		Models    []domain.LLMModel `json:"models"`
		FetchedAt time.Time         `json:"fetched_at"`
	}
	if err := json.Unmarshal(data, &mirror); err != nil {
		return fmt.Errorf("decode catalog mirror: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchedAt.IsZero() {
		c.models = append([]domain.LLMModel{}, mirror.Models...)
		c.fetchedAt = mirror.FetchedAt
		c.log.Debug().Int("models", len(mirror.Models)).Msg("catalog warmed from mirror")
	}
	return nil
}

func (c *Catalog) Models() []domain.LLMModel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.LLMModel{}, c.models...)
}

// FetchedAt is zero until the first successful refresh.
func (c *Catalog) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

func (c *Catalog) Lookup(id string) (domain.LLMModel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.models {
		if m.ID() == id {
			return m, true
		}
	}
	return domain.LLMModel{}, false
}

// Validate fails with UnknownModelError on the first role whose id is not in
// the snapshot.
func (c *Catalog) Validate(sel Selection) error {
	for _, role := range Roles() {
		id := sel.Get(role)
		if _, ok := c.Lookup(id); !ok || id == "" {
			return &UnknownModelError{Role: role, ID: id}
		}
	}
	return nil
}

// DefaultSelection uses the first catalog entry for every role.
func (c *Catalog) DefaultSelection() (Selection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.models) == 0 {
		return Selection{}, false
	}
	id := c.models[0].ID()
	return Selection{Investment: id, Portfolio: id, Analyst: id}, true
}

func (c *Catalog) store(models []domain.LLMModel, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = append([]domain.LLMModel{}, models...)
	c.fetchedAt = at
}

func (c *Catalog) writeMirror(ctx context.Context, models []domain.LLMModel) error {
	data, err := json.Marshal(struct {
		Models    []domain.LLMModel `json:"models"`
		FetchedAt time.Time         `json:"fetched_at"`
	}{Models: models, FetchedAt: c.FetchedAt()})
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, mirrorKey, data, c.ttl).Err()
}
