package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/artfolio/artfolio/migrations"
	"github.com/artfolio/artfolio/modules/auth"
	authstore "github.com/artfolio/artfolio/modules/auth/store"
	"github.com/artfolio/artfolio/modules/billing"
	billingstore "github.com/artfolio/artfolio/modules/billing/store"
	"github.com/artfolio/artfolio/modules/design"
	designstore "github.com/artfolio/artfolio/modules/design/store"
	"github.com/artfolio/artfolio/pkg/config"
	"github.com/artfolio/artfolio/pkg/email"
	"github.com/artfolio/artfolio/pkg/httpserver"
	"github.com/artfolio/artfolio/pkg/logger"
	"github.com/artfolio/artfolio/pkg/pg"
	"github.com/artfolio/artfolio/pkg/redis"
	"github.com/artfolio/artfolio/pkg/session"
	"github.com/artfolio/artfolio/pkg/storage"
)

type appConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"artfolio"`
	EmailDevDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName))
	logger.SetAsDefault(log)

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
		return err
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	mailer, err := newMailer(appCfg, emailCfg, log)
	if err != nil {
		return err
	}

	var sessionCfg session.Config
	config.MustLoad(&sessionCfg)
	sessions, err := session.NewManager(sessionCfg)
	if err != nil {
		return err
	}

	var s3Cfg storage.Config
	config.MustLoad(&s3Cfg)
	images, err := storage.New(ctx, s3Cfg)
	if err != nil {
		return err
	}

	var googleCfg auth.GoogleOAuthConfig
	config.MustLoad(&googleCfg)

	authSvc := auth.NewService(authstore.NewUserStore(pool), sessions, mailer,
		auth.WithLogger(log))
	googleFlow := auth.NewOAuthFlow(
		auth.NewGoogleAdapter(googleCfg),
		authstore.NewStateStore(redisClient),
		authSvc,
		auth.WithOAuthLogger(log),
		auth.WithStateTTL(googleCfg.StateTTL),
	)

	billingSvc := billing.NewService(billingstore.NewTransactionStore(pool),
		billing.WithLogger(log))

	designSvc := design.NewService(designstore.NewDesignStore(pool), images,
		design.WithLogger(log))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/health", healthHandler(pg.Healthcheck(pool), redis.Healthcheck(redisClient)))
	router.Mount("/auth", auth.NewHandler(authSvc, googleFlow, sessions, log).Handle())
	router.Mount("/admin/payments", billing.NewHandler(billingSvc, sessions, log).Handle())
	router.Mount("/designs", design.NewHandler(designSvc, sessions, log).Handle())

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	server := httpserver.New(httpCfg, httpserver.WithLogger(log))

	log.Info("starting server",
		slog.String("addr", httpCfg.Addr),
		slog.String("environment", appCfg.Environment),
	)
	return server.Run(ctx, router)
}

// newMailer picks Postmark when a server token is configured and falls
// back to the filesystem dev sender otherwise.
func newMailer(appCfg appConfig, cfg email.Config, log *slog.Logger) (email.Sender, error) {
	if cfg.PostmarkServerToken != "" {
		return email.NewPostmarkSender(cfg)
	}
	if appCfg.Environment != "development" {
		return nil, errors.New("postmark token is required outside development")
	}
	log.Warn("postmark token not set, writing emails to disk",
		slog.String("dir", appCfg.EmailDevDir))
	return email.NewDevSender(appCfg.EmailDevDir), nil
}

func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
