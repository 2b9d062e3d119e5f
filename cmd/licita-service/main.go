package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nurpe/licitabrasil/internal/auth"
	"github.com/nurpe/licitabrasil/internal/cache"
	"github.com/nurpe/licitabrasil/internal/cnpjws"
	"github.com/nurpe/licitabrasil/internal/config"
	"github.com/nurpe/licitabrasil/internal/db"
	"github.com/nurpe/licitabrasil/internal/excel"
	httphandler "github.com/nurpe/licitabrasil/internal/http"
	"github.com/nurpe/licitabrasil/internal/http/middleware"
	"github.com/nurpe/licitabrasil/internal/ibge"
	"github.com/nurpe/licitabrasil/internal/logger"
	"github.com/nurpe/licitabrasil/internal/model"
	"github.com/nurpe/licitabrasil/internal/pdf"
	"github.com/nurpe/licitabrasil/internal/pncp"
	"github.com/nurpe/licitabrasil/internal/ratelimit"
	"github.com/nurpe/licitabrasil/internal/repository"
	"github.com/nurpe/licitabrasil/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := newUserRepository(cfg, log)
	companyCache, municipalityCache, closeCache := newCaches(ctx, cfg, log)
	defer closeCache()

	// Per-call deadlines come from each client; the shared transport only pools connections.
	httpClient := &http.Client{}
	registry := pncp.NewClient(httpClient, pncp.Config{
		BaseURL: cfg.PNCP.BaseURL,
		AppURL:  cfg.PNCP.AppURL,
		Timeout: cfg.PNCP.Timeout,
	}, log)

	licitacoes := service.NewLicitacaoService(registry, cfg.PNCP.DefaultModalities, log)
	services := httphandler.Services{
		Licitacoes:   licitacoes,
		Export:       service.NewExportService(licitacoes, excel.NewGenerator(), pdf.NewGenerator()),
		Auth:         service.NewAuthService(users, auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL), service.DefaultHashCost),
		Companies:    service.NewCompanyService(cnpjws.NewClient(httpClient, cfg.CNPJ.BaseURL, cfg.CNPJ.Timeout), companyCache, log),
		Municipities: service.NewMunicipalityService(ibge.NewClient(httpClient, cfg.IBGE.BaseURL, cfg.IBGE.Timeout), municipalityCache, log),
	}

	generalLimits := ratelimit.NewStore(cfg.RateLimit.General, cfg.RateLimit.GeneralWindow)
	authLimits := ratelimit.NewStore(cfg.RateLimit.Auth, cfg.RateLimit.AuthWindow)
	generalLimits.StartJanitor(ctx)
	authLimits.StartJanitor(ctx)

	handler := httphandler.NewHandler(services, log)
	router := httphandler.NewRouter(handler, httphandler.RouterOptions{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Auth:           middleware.Auth(auth.NewParser(cfg.Auth.AccessSecret)),
		GeneralLimit:   middleware.RateLimit(generalLimits, middleware.GeneralLimitMessage),
		AuthLimit:      middleware.RateLimit(authLimits, middleware.AuthLimitMessage),
		Log:            log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", addr).Strs("modalidades", cfg.PNCP.DefaultModalities).Msg("starting licitabrasil service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// newUserRepository uses postgres when DB_DSN is set and keeps accounts in
// memory otherwise.
func newUserRepository(cfg *config.Config, log zerolog.Logger) service.UserRepository {
	if cfg.DB.DSN == "" {
		log.Warn().Msg("DB_DSN not set, user accounts are kept in memory")
		return repository.NewMemoryUserRepository()
	}
	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	return repository.NewUserRepository(database)
}

func newCaches(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Store[model.Company], cache.Store[[]model.Municipality], func()) {
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect redis")
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis cache")
		return cache.NewRedis[model.Company](rdb, "licitabrasil:cnpj:", cfg.CNPJ.CacheTTL),
			cache.NewRedis[[]model.Municipality](rdb, "licitabrasil:municipios:", 0),
			func() { _ = rdb.Close() }
	}

	companies := cache.NewMemory[model.Company](cfg.CNPJ.CacheTTL)
	companies.StartJanitor(ctx, companies.TTL())
	return companies, cache.NewMemory[[]model.Municipality](0), func() {}
}
