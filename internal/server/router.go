// router.go mounts every feature handler on a chi router.

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"roleta.com.br/server/internal/features/admin"
	"roleta.com.br/server/internal/features/clientlog"
	"roleta.com.br/server/internal/features/payments"
	"roleta.com.br/server/internal/features/players"
	"roleta.com.br/server/internal/features/progression"
	"roleta.com.br/server/internal/features/roulette"
	"roleta.com.br/server/internal/features/wallet"
	"roleta.com.br/server/internal/httpx"
)

// Handlers groups the feature handlers the router mounts.
type Handlers struct {
	Players     *players.Handler
	Wallet      *wallet.Handler
	Roulette    *roulette.Handler
	Progression *progression.Handler
	Payments    *payments.Handler
	Admin       *admin.Handler
	ClientLog   *clientlog.Handler
}

// RouterOptions configure cross-cutting middleware.
type RouterOptions struct {
	AllowedOrigins []string
	RateLimiter    *RateLimiter
	PlayerFilter   *PlayerFilter
}

// NewRouter builds the API router.
func NewRouter(h Handlers, opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", PlayerHeader, payments.CallbackTokenHeader},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/players", h.Players.HandleRegister)
		api.Get("/roulette/wheel", h.Roulette.HandleWheel)
		api.Get("/progression/leaderboard", h.Progression.HandleLeaderboard)
		api.Post("/pix/callback", h.Payments.HandleCallback)
		api.Post("/logs", h.ClientLog.HandleIngest)

		// player-scoped
		api.Group(func(pr chi.Router) {
			pr.Use(opts.PlayerFilter.Middleware)

			pr.Get("/players/me", h.Players.HandleMe)

			pr.Get("/wallet", h.Wallet.HandleBalance)
			pr.Get("/wallet/transactions", h.Wallet.HandleTransactions)

			pr.Post("/roulette/spin", h.Roulette.HandleSpin)
			pr.Get("/roulette/history", h.Roulette.HandleHistory)
			pr.Get("/roulette/stats", h.Roulette.HandleStats)

			pr.Get("/progression", h.Progression.HandleLevel)
			pr.Get("/progression/milestone", h.Progression.HandleMilestone)

			pr.Route("/pix", func(px chi.Router) {
				px.Post("/deposits", h.Payments.HandleCreateDeposit)
				px.Get("/deposits/{id}", h.Payments.HandleDepositStatus)
				px.Get("/deposits/{id}/wait", h.Payments.HandleWaitDeposit)
				px.Post("/withdrawals", h.Payments.HandleCreateWithdrawal)
				px.Get("/withdrawals", h.Payments.HandleListWithdrawals)
				px.Get("/withdrawals/{id}", h.Payments.HandleGetWithdrawal)
			})
		})

		api.Route("/admin", func(ad chi.Router) {
			ad.Post("/login", h.Admin.HandleLogin)

			ad.Group(func(op chi.Router) {
				op.Use(h.Admin.RequireSession)

				op.Post("/logout", h.Admin.HandleLogout)
				op.Post("/deposits/{id}/confirm", h.Admin.HandleConfirmDeposit)
				op.Get("/withdrawals/pending", h.Admin.HandlePendingWithdrawals)
				op.Post("/withdrawals/{id}/complete", h.Admin.HandleCompleteWithdrawal)
				op.Post("/withdrawals/{id}/reject", h.Admin.HandleRejectWithdrawal)
				op.Post("/players/{id}/adjust", h.Admin.HandleAdjust)
				op.Get("/stats", h.Admin.HandleStats)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorResponse{Error: "not found"})
	})

	return r
}
