// @title                      Warikan API
// @version                    1.0
// @description                Fee splitting for drinking parties, weighted by role.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/warikan/docs"
	"github.com/fkhayef/warikan/internal/config"
	"github.com/fkhayef/warikan/internal/database"
	"github.com/fkhayef/warikan/internal/event"
	"github.com/fkhayef/warikan/internal/kvstore"
	"github.com/fkhayef/warikan/internal/metrics"
	"github.com/fkhayef/warikan/internal/money"
	"github.com/fkhayef/warikan/internal/plan"
	"github.com/fkhayef/warikan/internal/plan/allocation"
	"github.com/fkhayef/warikan/internal/reminder"
	"github.com/fkhayef/warikan/internal/role"
	mw "github.com/fkhayef/warikan/pkg/middleware"
)

const tokenDuration = 30 * 24 * time.Hour

func main() {
	issue := flag.String("token", "", "print a bearer token for the given organizer and exit")
	flag.Parse()

	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)
	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	auth := mw.NewAuthenticator(cfg.JWTSecret, tokenDuration)
	if *issue != "" {
		token, err := auth.Generate(*issue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to issue token")
		}
		fmt.Println(token)
		return
	}

	if err := run(cfg, auth); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "human" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func run(cfg *config.Config, auth *mw.Authenticator) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local storage
	store, err := kvstore.OpenSQLite(cfg.DataPath)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info().Str("path", cfg.DataPath).Msg("Opened local store")

	formatter, err := money.NewFormatter(cfg.Currency.Locale, cfg.Currency.Symbol)
	if err != nil {
		return err
	}

	// Allocation Strategy Factory (Factory Pattern)
	factory := allocation.NewFactory()
	defaultPolicy, err := factory.CreateFromString(cfg.Allocation.Policy)
	if err != nil {
		return err
	}

	appMetrics := metrics.New()

	// Role feature
	roleTable, err := role.NewTable(ctx, role.NewRepository(store), cfg.Allocation.MaxMultiplier)
	if err != nil {
		return err
	}
	roleHandler := role.NewHandler(roleTable)

	// Plan feature (with allocation factory injected)
	planService := plan.NewService(plan.NewRepository(store), roleTable, factory, formatter, plan.Options{
		DefaultPolicy:    defaultPolicy.Policy(),
		DefaultItemLabel: cfg.Allocation.DefaultItemLabel,
	}).WithObserver(appMetrics)
	planHandler := plan.NewHandler(planService, roleTable)

	// Scheduling and reminders need the shared database
	var (
		eventHandler    *event.Handler
		reminderHandler *reminder.Handler
	)
	if cfg.RemoteEnabled() {
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("Connected to database successfully")

		eventService := event.NewService(event.NewRepository(db))
		eventHandler = event.NewHandler(eventService)

		planService.
			WithMirror(plan.NewPostgresMirror(db)).
			WithResponses(respondents(eventService))

		reminderService := reminder.NewService(reminder.NewRepository(db), planService)
		reminderHandler = reminder.NewHandler(reminderService)
	} else {
		log.Warn().Msg("DATABASE_URL not set, scheduling and reminders are disabled")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log.Logger))
	r.Use(middleware.Recoverer)
	r.Use(appMetrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", appMetrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)

		// Mount feature routers
		r.Mount("/roles", roleHandler.Routes())
		r.Mount("/plans", planHandler.Routes())
		if eventHandler != nil {
			r.Mount("/events", eventHandler.Routes())
			r.Mount("/reminders", reminderHandler.Routes())
		}
	})

	// Invitees answer without a token
	if eventHandler != nil {
		r.Mount("/public/events", eventHandler.PublicRoutes())
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Bool("auth", auth.Enabled()).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// respondents exposes scheduling answers to the plan roster import
func respondents(events *event.Service) plan.ResponseSource {
	return plan.ResponseSourceFunc(func(ctx context.Context, eventID string) ([]plan.Respondent, error) {
		responses, err := events.ListResponses(ctx, eventID)
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, plan.ErrNoScheduleEvent
		}
		if err != nil {
			return nil, err
		}

		out := make([]plan.Respondent, 0, len(responses))
		for _, resp := range responses {
			out = append(out, plan.Respondent{ResponseID: resp.ID, Name: resp.Name})
		}
		return out, nil
	})
}
