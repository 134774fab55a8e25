package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/config"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/infra/httpclient"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/infra/sms"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/infra/toss"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
	redrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/redis"
	authsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/auth"
	couponsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/coupons"
	invitesvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/invitations"
	matchsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/matchings"
	ordersvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/orders"
	teamsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/teams"
	ticketsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/tickets"
	usersvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	location, err := time.LoadLocation(cfg.Matching.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Matching.Timezone, err)
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	teamRepo := pgrepo.NewTeamRepo(pool)
	matchingRepo := pgrepo.NewMatchingRepo(pool)
	couponRepo := pgrepo.NewCouponRepo(pool)
	orderRepo := pgrepo.NewOrderRepo(pool)
	ticketRepo := pgrepo.NewTicketRepo(pool)
	invitationRepo := pgrepo.NewInvitationRepo(pool)

	tossClient := toss.NewClient(cfg.Toss.BaseURL, cfg.Toss.SecretKey, httpclient.New(cfg.Toss.Timeout))
	smsClient := sms.NewClient(
		cfg.SMS.BaseURL,
		cfg.SMS.ServiceID,
		cfg.SMS.AccessKey,
		cfg.SMS.SecretKey,
		cfg.SMS.FromNumber,
		httpclient.New(cfg.SMS.Timeout),
	)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, cfg.Auth.RefreshTTL)
	ticketService := ticketsvc.NewService(ticketRepo)
	couponService := couponsvc.NewService(couponRepo, cfg.Catalog, location)
	teamService := teamsvc.NewService(teamsvc.Dependencies{
		Teams:     teamRepo,
		Matchings: matchingRepo,
		Matching:  cfg.Matching,
	})
	matchingService := matchsvc.NewService(matchsvc.Dependencies{
		Pool:      pool,
		Matchings: matchingRepo,
		Teams:     teamRepo,
		Users:     userRepo,
		Tickets:   ticketService,
		SMS:       smsClient,
		Logger:    log,
		MaxTrial:  cfg.Matching.MaxTrial,
	})
	orderService := ordersvc.NewService(ordersvc.Dependencies{
		Pool:     pool,
		Coupons:  couponRepo,
		Orders:   orderRepo,
		Tickets:  ticketService,
		Payments: tossClient,
		Catalog:  cfg.Catalog,
		Location: location,
	})
	invitationService := invitesvc.NewService(invitesvc.Dependencies{
		Invitations: invitationRepo,
		Users:       userRepo,
		Coupons:     couponService,
		Logger:      log,
	})
	userService := usersvc.NewService(usersvc.Dependencies{
		Users:       userRepo,
		Teams:       teamRepo,
		Matchings:   matchingRepo,
		Tickets:     ticketService,
		Coupons:     couponService,
		Invitations: invitationRepo,
		Orders:      orderRepo,
		TeamDelete:  teamRepo,
		MaxTrial:    cfg.Matching.MaxTrial,
	})

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		UserService:       userService,
		TeamService:       teamService,
		MatchingService:   matchingService,
		OrderService:      orderService,
		CouponService:     couponService,
		TicketService:     ticketService,
		InvitationService: invitationService,
		SucceededLister:   matchingRepo,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
