package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/auth"
	couponsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/coupons"
	invitesvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/invitations"
	matchsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/matchings"
	ordersvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/orders"
	teamsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/teams"
	ticketsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/tickets"
	usersvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/users"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	UserService       *usersvc.Service
	TeamService       *teamsvc.Service
	MatchingService   *matchsvc.Service
	OrderService      *ordersvc.Service
	CouponService     *couponsvc.Service
	TicketService     *ticketsvc.Service
	InvitationService *invitesvc.Service
	SucceededLister   handlers.SucceededLister
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	usersHandler := handlers.NewUsersHandler(deps.UserService)
	teamsHandler := handlers.NewTeamsHandler(deps.TeamService)
	matchingsHandler := handlers.NewMatchingsHandler(deps.MatchingService)
	ordersHandler := handlers.NewOrdersHandler(deps.OrderService)
	couponsHandler := handlers.NewCouponsHandler(deps.CouponService, deps.TicketService)
	invitationsHandler := handlers.NewInvitationsHandler(deps.InvitationService)
	adminHandler := handlers.NewAdminHandler(deps.UserService, deps.TeamService, deps.MatchingService, deps.CouponService, deps.SucceededLister)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminRoleMW := RequireRole("ADMIN")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/kakao", authHandler.Kakao)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/me", usersHandler.Me)
		r.Get("/me/matching-status", usersHandler.MatchingStatus)
		r.Get("/me/counts", usersHandler.Counts)
		r.Patch("/me/phone", usersHandler.UpdatePhone)
		r.Patch("/me/gender", usersHandler.UpdateGender)
		r.Patch("/me/age-range", usersHandler.UpdateAgeRange)
		r.Delete("/me", usersHandler.Delete)
	})

	r.Route("/teams", func(r chi.Router) {
		r.Get("/counts", teamsHandler.AppliedCounts)
		r.With(authMW).Post("/", teamsHandler.Create)
		r.With(authMW).Get("/", teamsHandler.ListMine)
		r.With(authMW).Patch("/{teamID}", teamsHandler.Update)
		r.With(authMW).Delete("/{teamID}", teamsHandler.Delete)
	})

	r.Route("/matchings", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/{matchingID}", matchingsHandler.Get)
		r.Post("/{matchingID}/accept", matchingsHandler.Accept)
		r.Post("/{matchingID}/refuse", matchingsHandler.Refuse)
		r.Post("/{matchingID}/refuse-reason", matchingsHandler.RefuseReason)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/products", ordersHandler.Products)
		r.With(authMW).Get("/new-id", ordersHandler.NewOrderID)
		r.With(authMW).Post("/", ordersHandler.Create)
		r.With(authMW).Get("/", ordersHandler.ListMine)
	})

	r.Route("/coupons", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", couponsHandler.ListMine)
		r.Get("/count", couponsHandler.Count)
	})
	r.With(authMW).Get("/tickets/count", couponsHandler.TicketCount)

	r.Route("/invitations", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", invitationsHandler.Redeem)
		r.Get("/count", invitationsHandler.Count)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, adminRoleMW)
		r.Get("/users", adminHandler.ListUsers)
		r.Post("/matchings", adminHandler.CreateMatching)
		r.Get("/matchings/succeeded", adminHandler.ListSucceededMatchings)
		r.Post("/rounds/advance", adminHandler.AdvanceRound)
		r.Post("/matchings/{matchingID}/chat-created", adminHandler.MarkChatCreated)
		r.Delete("/matchings/{matchingID}", adminHandler.DeleteMatching)
		r.Post("/coupons", adminHandler.GrantCoupon)
	})
}
