// Package app builds the object graph shared by the API server and the admin
// CLI from a Config.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/auth"
	"github.com/dharsanguruparan/HostelDesk/internal/blobstore"
	"github.com/dharsanguruparan/HostelDesk/internal/config"
	"github.com/dharsanguruparan/HostelDesk/internal/database"
	"github.com/dharsanguruparan/HostelDesk/internal/export"
	"github.com/dharsanguruparan/HostelDesk/internal/form"
	"github.com/dharsanguruparan/HostelDesk/internal/metrics"
	"github.com/dharsanguruparan/HostelDesk/internal/queue"
	"github.com/dharsanguruparan/HostelDesk/internal/records"
	"github.com/dharsanguruparan/HostelDesk/internal/render"
	"github.com/dharsanguruparan/HostelDesk/internal/repository"
	"github.com/dharsanguruparan/HostelDesk/internal/server"
	"github.com/dharsanguruparan/HostelDesk/internal/signing"
	"github.com/dharsanguruparan/HostelDesk/internal/storage"
	"github.com/dharsanguruparan/HostelDesk/internal/worker"
)

// StaffStore manages staff accounts.
type StaffStore interface {
	auth.StaffStore
	Create(ctx context.Context, s *auth.Staff) error
	List(ctx context.Context) ([]auth.Staff, error)
}

// StudentStore is the full record store.
type StudentStore interface {
	records.Store
	form.RecordCreator
}

// Blobs is the full blob store.
type Blobs interface {
	form.PhotoUploader
	export.Blobs
	records.Photos
	worker.Purger
}

// App holds the wired services.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Metrics  *metrics.Metrics
	Students StudentStore
	Staff    StaffStore
	Blobs    Blobs
	Auth     *auth.Service
	Drafts   *form.Registry
	Records  *records.Service
	Exports  *export.Service

	pool    *pgxpool.Pool
	opener  server.BlobOpener
	closers []func()
}

// New connects the configured backends and wires the services.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, Metrics: metrics.New()}
	if err := a.connect(ctx); err != nil {
		a.Close()
		return nil, err
	}

	policy, err := form.ParsePolicy(cfg.GatePolicy)
	if err != nil {
		a.Close()
		return nil, err
	}
	denylist, purge := a.sessionsAndPurge()

	a.Auth = auth.NewService(a.Staff, denylist, auth.Options{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.SessionTTL,
	})
	a.Drafts = form.NewRegistry(form.NewGate(policy), form.NewSubmitter(a.Blobs, a.Students, cfg.MaxPhotoBytes))
	a.Records = records.NewService(a.Students, a.Blobs, purge, log)
	a.Exports = export.NewService(
		a.Students,
		a.Blobs,
		render.NewClient(cfg.RenderURL, cfg.RenderTimeout),
		export.NewRegistry(export.Options{Tick: cfg.ProgressTick, Step: cfg.ProgressStep, Cap: cfg.ProgressCap}),
		a.Metrics,
		log,
	)
	a.closers = append(a.closers, a.Auth.Subscribe(a.onSessionEvent))

	if err := a.bootstrapAdmin(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Store {
	case config.StoreMemory:
		a.Students = storage.NewStudentStore()
		a.Staff = storage.NewStaffStore()
	default:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		a.pool = pool
		a.closers = append(a.closers, pool.Close)
		if err := database.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		a.Students = repository.NewStudentRepository(pool)
		a.Staff = repository.NewStaffRepository(pool)
	}

	if cfg.S3Endpoint == "" {
		a.Log.Warn().Msg("no S3 endpoint configured, keeping blobs in memory")
		mem := blobstore.NewMemory(signing.NewSigner(cfg.SigningSecret), cfg.SignedURLTTL)
		a.Blobs = mem
		a.opener = mem
		return nil
	}
	s3, err := blobstore.NewS3(cfg)
	if err != nil {
		return err
	}
	if err := s3.EnsureBuckets(ctx); err != nil {
		return fmt.Errorf("ensure buckets: %w", err)
	}
	a.Blobs = s3
	return nil
}

// sessionsAndPurge picks Redis for the session denylist when the record
// store is Postgres. Purges go through asynq only when the blobs live in S3,
// where cmd/worker can reach them; memory blobs are purged inline.
func (a *App) sessionsAndPurge() (auth.Denylist, records.PurgeFunc) {
	cfg := a.Config
	inline := worker.NewProcessor(a.Blobs, a.Metrics, a.Log).Purge
	if cfg.Store == config.StoreMemory || cfg.RedisAddr == "" {
		return auth.NewMemoryDenylist(), inline
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	denylist := auth.NewRedisDenylist(rdb)
	if a.opener != nil {
		return denylist, inline
	}

	client := asynq.NewClient(RedisOpt(cfg))
	a.closers = append(a.closers, func() { _ = client.Close() })
	return denylist, queue.NewClient(client).EnqueuePurge
}

// RedisOpt is the asynq connection used by the API and the worker.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// onSessionEvent tears down per-staff state when a staff member signs out.
func (a *App) onSessionEvent(ev auth.Event) {
	if ev.Kind != auth.SignedOut {
		return
	}
	a.Drafts.Discard(ev.StaffID)
	a.Exports.Trackers().Discard(ev.StaffID)
	a.Records.DiscardOwner(ev.StaffID)
	a.Log.Debug().Str("staff", ev.StaffID).Msg("per-staff state discarded")
}

func (a *App) bootstrapAdmin(ctx context.Context) error {
	cfg := a.Config
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	if _, err := a.Staff.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}
	_, err := a.AddStaff(ctx, cfg.AdminEmail, cfg.AdminPassword)
	return err
}

// AddStaff creates a staff account with a hashed password.
func (a *App) AddStaff(ctx context.Context, email, password string) (auth.Staff, error) {
	if email == "" || password == "" {
		return auth.Staff{}, apperrors.Invalid("Please fill in all fields")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return auth.Staff{}, err
	}
	account := auth.Staff{Email: email, PasswordHash: hash}
	if err := a.Staff.Create(ctx, &account); err != nil {
		return auth.Staff{}, fmt.Errorf("create staff: %w", err)
	}
	a.Log.Info().Str("email", account.Email).Msg("staff account created")
	return account, nil
}

// Server builds the HTTP server over the wired services.
func (a *App) Server() *server.Server {
	deps := server.Deps{
		Address:       a.Config.Address,
		MaxPhotoBytes: a.Config.MaxPhotoBytes,
		Auth:          a.Auth,
		Drafts:        a.Drafts,
		Records:       a.Records,
		Exports:       a.Exports,
		Metrics:       a.Metrics,
		Log:           a.Log,
	}
	if a.opener != nil {
		deps.Blobs = a.opener
	}
	if a.pool != nil {
		deps.Ready = a.pool.Ping
	}
	return server.New(deps)
}

// Close releases connections in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
