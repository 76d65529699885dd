package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/analysis"
	"resume-tailor/internal/applications"
	googleauth "resume-tailor/internal/auth"
	"resume-tailor/internal/billing"
	"resume-tailor/internal/events"
	"resume-tailor/internal/feedback"
	"resume-tailor/internal/joburl"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/llm/gemini"
	"resume-tailor/internal/llm/openai"
	"resume-tailor/internal/parse"
	"resume-tailor/internal/resumes"
	sharedauth "resume-tailor/internal/shared/auth"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/server"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/storage/object"
	localstore "resume-tailor/internal/shared/storage/object/local"
	s3store "resume-tailor/internal/shared/storage/object/s3"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/tailoring"
	"resume-tailor/internal/thumbnail"
	"resume-tailor/internal/users"
)

const (
	llmAttempts   = 3
	llmRetryDelay = 500 * time.Millisecond
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	LLM    llm.Completer
	Events events.Publisher
	Signer *sharedauth.Signer

	UsersService        *users.Service
	ResumesService      *resumes.Service
	ApplicationsService *applications.Service
	JobURLService       *joburl.Service
	FeedbackService     *feedback.Service
	BillingService      *billing.Service
	GoogleAuth          *googleauth.GoogleService

	closers []func() error
}

// Build prepares dependencies and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	completer, err := buildCompleter(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.LLM = completer

	publisher, err := buildEvents(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Events = publisher
	if amqp, ok := publisher.(*events.AMQPPublisher); ok {
		app.closers = append(app.closers, amqp.Close)
	}

	signer, err := sharedauth.NewSigner(cfg.JWTSecret, cfg.Env)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Signer = signer

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       cfg,
		Verifier:     signer,
		GoogleAuth:   app.GoogleAuth,
		Users:        users.NewHandler(app.UsersService),
		Resumes:      resumes.NewHandler(app.ResumesService),
		Applications: applications.NewHandler(app.ApplicationsService),
		JobURL:       joburl.NewHandler(app.JobURLService),
		Feedback:     feedback.NewHandler(app.FeedbackService),
		Billing:      billing.NewHandler(app.BillingService),
	})

	return app, nil
}

// Close releases the database pool and broker connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.ServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			KMSKeyID:        cfg.SSEKMSKeyID,
			UsePathStyle:    cfg.S3Endpoint != "",
		})
	case "supabase":
		return s3store.NewSupabase(ctx, cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket,
			cfg.AWSRegion, cfg.S3AccessKeyID, cfg.S3SecretAccessKey)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildCompleter picks the configured provider. A missing key degrades to
// llm.Unavailable so parsing and analysis fall back to rules.
func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	var (
		base llm.Completer
		err  error
	)
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			break
		}
		base, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.OpenAIBaseURL, cfg.LLMTimeout)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			break
		}
		base, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("llm provider %s: %w", cfg.LLMProvider, err)
	}
	if base == nil {
		telemetry.Warn("bootstrap.llm_unavailable", map[string]any{"provider": cfg.LLMProvider})
		return llm.Unavailable{}, nil
	}
	return llm.Instrumented{Base: llm.Retrying{Base: base, Attempts: llmAttempts, Delay: llmRetryDelay}}, nil
}

func buildEvents(cfg config.Config) (events.Publisher, error) {
	if strings.TrimSpace(cfg.AMQPURL) == "" {
		return events.Nop{}, nil
	}
	pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.events_disabled", map[string]any{"error": err})
			return events.Nop{}, nil
		}
		return nil, err
	}
	return pub, nil
}

func buildServices(app *App) {
	cfg := app.Config

	var (
		userRepo        users.Repo
		resumeRepo      resumes.Repo
		applicationRepo applications.Repo
		feedbackRepo    feedback.Repo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		applicationRepo = &applications.PGRepo{DB: app.DB}
		feedbackRepo = &feedback.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		resumeRepo = resumes.NewMemoryRepo()
		applicationRepo = applications.NewMemoryRepo()
		feedbackRepo = feedback.NewMemoryRepo()
	}

	var renderer thumbnail.Renderer = thumbnail.Disabled{}
	if cfg.ThumbnailsEnabled {
		renderer = thumbnail.NewChromedpRenderer(cfg.ChromePath)
	}

	userSvc := users.NewService(userRepo, cfg.FreeMonthlyResumes)
	resumeSvc := &resumes.Service{
		Repo:       resumeRepo,
		Store:      app.Store,
		Quota:      resumes.UserQuota{Users: userSvc},
		Parser:     parse.NewService(app.LLM),
		Analysis:   analysis.NewService(app.LLM),
		Tailorer:   tailoring.Tailorer{LLM: app.LLM},
		Thumbnails: renderer,
		Events:     app.Events,
	}
	applicationSvc := applications.NewService(applicationRepo, resumeSvc)
	resumeSvc.Applications = applicationSvc

	var gateway billing.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = billing.NewStripeGateway(cfg.StripeSecretKey, nil)
	}
	billingSvc := billing.NewService(gateway, userSvc, app.Events, billing.Config{
		PriceID:       cfg.StripePriceID,
		WebhookSecret: cfg.StripeWebhookSecret,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	app.UsersService = userSvc
	app.ResumesService = resumeSvc
	app.ApplicationsService = applicationSvc
	app.JobURLService = joburl.NewService(joburl.NewRestyFetcher(0), app.LLM)
	app.FeedbackService = feedback.NewService(feedbackRepo)
	app.BillingService = billingSvc
	app.GoogleAuth = googleauth.NewGoogleService(googleauth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		CookieName:   cfg.SessionCookieName,
		SecureCookie: !cfg.IsDevLike(),
	}, userSvc, app.Signer)
}
