package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/bracket-admin/internal/auth"
	"github.com/AdamBeresnev/bracket-admin/internal/config"
	"github.com/AdamBeresnev/bracket-admin/internal/db"
	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/metrics"
	"github.com/AdamBeresnev/bracket-admin/internal/middleware"
	"github.com/AdamBeresnev/bracket-admin/internal/notify"
	"github.com/AdamBeresnev/bracket-admin/internal/service"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	database, err := db.InitDB(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("failed to open database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsURL); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}

	middleware.InitAuth(cfg)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Secure = cfg.IsProduction()
	sessionManager.Store = sqlite3store.New(database.DB)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var mailer notify.Mailer = notify.LogMailer{From: cfg.MailFrom}
	app := newApplication(cfg, database, sessionManager, mailer, registry, clockwork.NewRealClock())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.routes(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

type application struct {
	cfg       *config.Config
	sessions  *scs.SessionManager
	tokens    *auth.JWTManager
	userStore *store.UserStore

	users         *service.UserService
	tournaments   *service.TournamentService
	registrations *service.RegistrationService
	brackets      *service.BracketService
	matches       *service.MatchService
	teams         *service.TeamService
	notifications *service.NotificationService
	access        *service.AccessService
}

func newApplication(cfg *config.Config, database *sqlx.DB, sessions *scs.SessionManager, mailer notify.Mailer, reg prometheus.Registerer, clock clockwork.Clock) *application {
	tournamentStore := store.NewTournamentStore(database)
	userStore := store.NewUserStore(database)
	teamStore := store.NewTeamStore(database)
	m := metrics.New(reg)

	notifications := service.NewNotificationService(database, store.NewNotificationStore(database), userStore, mailer, notify.NewRenderer("Bracket Admin", cfg.BaseURL), clock)

	return &application{
		cfg:       cfg,
		sessions:  sessions,
		tokens:    auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration, clock),
		userStore: userStore,

		users:         service.NewUserService(database, userStore),
		tournaments:   service.NewTournamentService(database, tournamentStore),
		registrations: service.NewRegistrationService(database, tournamentStore, teamStore, notifications),
		brackets:      service.NewBracketService(database, tournamentStore, notifications, m),
		matches:       service.NewMatchService(database, tournamentStore, notifications, m),
		teams:         service.NewTeamService(database, teamStore),
		notifications: notifications,
		access:        service.NewAccessService(database, tournamentStore),
	}
}
