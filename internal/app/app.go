// Package app assembles the application.
// app.go builds repositories, services, handlers, the router and the
// scheduler, in dependency order.
package app

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/config"
	"roleta.com.br/server/internal/features/admin"
	"roleta.com.br/server/internal/features/clientlog"
	"roleta.com.br/server/internal/features/payments"
	"roleta.com.br/server/internal/features/players"
	"roleta.com.br/server/internal/features/progression"
	"roleta.com.br/server/internal/features/roulette"
	"roleta.com.br/server/internal/features/wallet"
	"roleta.com.br/server/internal/jobs"
	"roleta.com.br/server/internal/notify"
	"roleta.com.br/server/internal/server"
)

// App holds the assembled components.
type App struct {
	Server      *server.Server
	Router      http.Handler
	Scheduler   *jobs.Scheduler
	RateLimiter *server.RateLimiter
	Gateway     *payments.SimulatedGateway
}

// New builds the application from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Notifications ===
	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.NotificationsEnabled() {
		notifier = notify.New(cfg.TelegramBotToken, cfg.TelegramOperatorChatID)
	}

	// === 2. Repositories ===
	walletRepo := wallet.NewRepository()
	progressionRepo := progression.NewRepository()
	rouletteRepo := roulette.NewRepository(cfg.RouletteHistorySize)
	paymentsRepo := payments.NewRepository()
	playersRepo := players.NewRepository()
	adminRepo := admin.NewRepository()

	// === 3. Services ===
	walletService := wallet.NewService(walletRepo, cfg.WalletStartingBalance)
	progressionService := progression.NewService(progressionRepo)
	rouletteService := roulette.NewService(rouletteRepo, walletService, progressionService,
		roulette.NewGenerator(roulette.NewRandomSource()),
		roulette.Settings{
			Enabled: cfg.FeatureRouletteEnabled,
			MinBet:  cfg.RouletteMinBet,
			MaxBet:  cfg.RouletteMaxBet,
		})
	gateway := payments.NewSimulatedGateway(cfg.PixReceiverKey, cfg.PixMerchantName, cfg.PixMerchantCity)
	paymentsService := payments.NewService(paymentsRepo, walletService, gateway, notifier, payments.Settings{
		Enabled:            cfg.FeaturePixEnabled,
		MinDeposit:         cfg.PixMinDeposit,
		MaxDeposit:         cfg.PixMaxDeposit,
		MinWithdraw:        cfg.PixMinWithdraw,
		DailyWithdrawLimit: cfg.PixDailyWithdrawLimit,
		DepositTTL:         cfg.PixDepositTTL,
		PollInterval:       cfg.PixPollInterval,
		PollAttempts:       cfg.PixPollAttempts,
		CallbackToken:      cfg.PixCallbackToken,
	})
	playersService := players.NewService(playersRepo, walletService, progressionService)
	adminService := admin.NewService(adminRepo, admin.Settings{
		PasswordHash: cfg.AdminPasswordHash,
		SessionTTL:   cfg.AdminSessionTTL,
		MaxAttempts:  cfg.AdminMaxAttempts,
	})

	// === 4. Handlers ===
	handlers := server.Handlers{
		Players:     players.NewHandler(playersService),
		Wallet:      wallet.NewHandler(walletService, cfg.WalletCurrency),
		Roulette:    roulette.NewHandler(rouletteService),
		Progression: progression.NewHandler(progressionService),
		Payments:    payments.NewHandler(paymentsService),
		Admin:       admin.NewHandler(adminService, paymentsService, walletService, rouletteService, playersService),
		ClientLog:   clientlog.NewHandler(server.PlayerHeader),
	}

	// === 5. Router ===
	rateLimiter := server.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router := server.NewRouter(handlers, server.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:    rateLimiter,
		PlayerFilter:   server.NewPlayerFilter(playersService),
	})

	// === 6. HTTP server ===
	srv := server.New(router, server.Options{
		Addr:            cfg.HTTPAddr,
		ReadTimeout:     cfg.HTTPReadTimeout,
		WriteTimeout:    cfg.HTTPWriteTimeout,
		ShutdownTimeout: cfg.HTTPShutdownTimeout,
	})

	// === 7. Scheduler ===
	scheduler := jobs.NewScheduler(cfg.AppTimezone, paymentsService, adminService, rouletteService)

	log.WithFields(log.Fields{
		"env":      cfg.AppEnv,
		"roulette": cfg.FeatureRouletteEnabled,
		"pix":      cfg.FeaturePixEnabled,
	}).Info("Application assembled")

	return &App{
		Server:      srv,
		Router:      router,
		Scheduler:   scheduler,
		RateLimiter: rateLimiter,
		Gateway:     gateway,
	}, nil
}

// Close releases background resources.
func (a *App) Close() {
	a.RateLimiter.Close()
}
