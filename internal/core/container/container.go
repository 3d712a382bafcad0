package container

import (
	"context"
	"database/sql"
	"fmt"

	"splitters/internal/blobstore"
	"splitters/internal/core/config"
	"splitters/internal/database"
	"splitters/internal/documents"
	"splitters/internal/events"
	"splitters/internal/locations"
	"splitters/internal/middleware"
	"splitters/internal/rate_limiter"
	"splitters/internal/repository"
	"splitters/internal/seed"
	"splitters/internal/store"
	"splitters/internal/teams"
	"splitters/pkg/auditlog"
	"splitters/pkg/security"

	"go.uber.org/zap"
)

const AppVersion = "1.0.0"

type Container struct {
	Config *config.Config
	Log    *zap.Logger

	DB         *sql.DB
	Repository *repository.Repository
	Store      *store.Store

	Gate        *security.Gate
	Tokens      *security.TokenIssuer
	RateLimiter *rate_limiter.RateLimiter
	AuditLog    *auditlog.Auditlog
	Health      *middleware.Health

	ConfirmHandler  *security.ConfirmHandler
	LocationHandler *locations.LocationHandler
	TeamHandler     *teams.TeamHandler
	DocumentHandler *documents.DocumentHandler
	EventsHandler   *events.EventsHandler
}

// NewStore builds the configured backend and a store over it. The returned *sql.DB is nil
// for the local backend.
func NewStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*store.Store, *sql.DB, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		backend := locations.NewPostgresBackend(repository.NewRepository(db), cfg.DatabaseURL, log.Named("postgres"))
		return store.New(backend, log.Named("store")), db, nil

	case config.BackendLocal:
		backend := blobstore.New(cfg.LocalPath, log.Named("blobstore"),
			blobstore.WithSeed(seed.Default),
			blobstore.WithPollInterval(cfg.PollInterval),
		)
		return store.New(backend, log.Named("store")), nil, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func NewAppContainer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	s, db, err := NewStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	authorizer, err := newAuthorizer(cfg, log)
	if err != nil {
		return nil, err
	}
	gate := security.NewGate(authorizer, log.Named("gate"))

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		log.Warn("JWT_SECRET not set, confirmation tokens will not survive a restart")
		if secret, err = security.RandomSecret(); err != nil {
			return nil, err
		}
	}
	tokens := security.NewTokenIssuer(secret, cfg.ConfirmTokenTTL)
	rateLimiter := rate_limiter.NewRateLimiter(cfg.ConfirmAttempts, cfg.ConfirmWindow)

	var repo *repository.Repository
	var teamLister teams.TeamLister = teams.NoTeams{}
	if db != nil {
		repo = repository.NewRepository(db)
		teamLister = teams.NewRepository(repo)
	}

	var objectStorage documents.ObjectStorage
	if cfg.DocumentsEnabled() {
		objectStorage = documents.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey)
	}
	documentService := documents.NewDocumentService(objectStorage, cfg.DocumentsBucket)

	auditLog := auditlog.NewAuditLog(log)

	return &Container{
		Config:          cfg,
		Log:             log,
		DB:              db,
		Repository:      repo,
		Store:           s,
		Gate:            gate,
		Tokens:          tokens,
		RateLimiter:     rateLimiter,
		AuditLog:        auditLog,
		Health:          middleware.NewHealth(s, cfg.Backend, AppVersion),
		ConfirmHandler:  security.NewConfirmHandler(gate, tokens, rateLimiter),
		LocationHandler: locations.NewLocationHandler(s, auditLog),
		TeamHandler:     teams.NewTeamHandler(teamLister),
		DocumentHandler: documents.NewDocumentHandler(documentService, s, log.Named("documents")),
		EventsHandler:   events.NewEventsHandler(s, log.Named("events")),
	}, nil
}

func newAuthorizer(cfg *config.Config, log *zap.Logger) (security.Authorizer, error) {
	if cfg.AdminPasswordHash != "" {
		return security.BcryptHash(cfg.AdminPasswordHash), nil
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}
	if cfg.AdminPassword == config.DefaultAdminPassword {
		log.Warn("Using the default delete password, set ADMIN_PASSWORD_HASH for real deployments")
	}

	return security.SharedSecret(cfg.AdminPassword), nil
}

func (c *Container) Close() {
	c.RateLimiter.Stop()
	if c.DB != nil {
		c.DB.Close()
	}
}
