// Package jobs runs the background tasks on a cron schedule in the
// configured timezone: PIX charge expiry, the daily withdrawal reset,
// admin session cleanup and an hourly house report.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/features/admin"
	"roleta.com.br/server/internal/features/payments"
	"roleta.com.br/server/internal/features/roulette"
)

// Schedules
const (
	SpecExpireDeposits = "@every 1m"
	SpecResetDaily     = "0 0 * * *"
	SpecSweepSessions  = "*/10 * * * *"
	SpecHouseReport    = "0 * * * *"
)

// Scheduler runs background tasks.
type Scheduler struct {
	cron            *cron.Cron
	loc             *time.Location
	paymentsService *payments.Service
	adminService    *admin.Service
	rouletteService *roulette.Service
	now             func() time.Time
}

// NewScheduler creates a scheduler in the timezone named by tz.
func NewScheduler(tz string, paymentsService *payments.Service, adminService *admin.Service, rouletteService *roulette.Service) *Scheduler {
	loc := common.LoadLocation(tz)

	return &Scheduler{
		cron:            cron.New(cron.WithLocation(loc)),
		loc:             loc,
		paymentsService: paymentsService,
		adminService:    adminService,
		rouletteService: rouletteService,
		now:             time.Now,
	}
}

// Start registers every task and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	tasks := []struct {
		spec string
		name string
		fn   func(context.Context)
	}{
		{SpecExpireDeposits, "expire_deposits", s.expireDeposits},
		{SpecResetDaily, "reset_daily_limits", s.resetDailyLimits},
		{SpecSweepSessions, "sweep_sessions", s.sweepSessions},
		{SpecHouseReport, "house_report", s.houseReport},
	}

	for _, t := range tasks {
		fn := t.fn
		if _, err := s.cron.AddFunc(t.spec, func() { fn(ctx) }); err != nil {
			return err
		}
		log.WithFields(log.Fields{"job": t.name, "spec": t.spec}).Debug("[CRON] Job registered")
	}

	s.cron.Start()
	log.WithField("timezone", s.loc.String()).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

func (s *Scheduler) expireDeposits(ctx context.Context) {
	if n := s.paymentsService.ExpireStaleDeposits(ctx, s.now()); n > 0 {
		log.WithFields(log.Fields{
			"count":   n,
			"summary": common.CountOf(int64(n), "cobrança expirada", "cobranças expiradas"),
		}).Info("[CRON] Stale deposits expired")
	}
}

func (s *Scheduler) resetDailyLimits(ctx context.Context) {
	n := s.paymentsService.ResetDailyLimits(ctx)
	log.WithFields(log.Fields{
		"players": n,
		"date":    common.LocalDate(s.now(), s.loc).Format("2006-01-02"),
	}).Info("[CRON] Daily withdrawal limits reset")
}

func (s *Scheduler) sweepSessions(ctx context.Context) {
	s.adminService.SweepSessions(ctx)
}

func (s *Scheduler) houseReport(ctx context.Context) {
	hs := s.rouletteService.HouseStats(ctx)
	log.WithFields(log.Fields{
		"players":  common.CountOf(int64(hs.Players), "jogador", "jogadores"),
		"spins":    common.CountOf(int64(hs.TotalSpins), "giro", "giros"),
		"wagered":  common.FormatBRL(hs.TotalWagered),
		"lost":     common.FormatBRL(hs.TotalLost),
		"paid_out": common.FormatBRL(hs.TotalWon),
		"rtp":      hs.RTP,
		"at":       common.FormatDateTime(s.now(), s.loc),
	}).Info("[CRON] House report")
}
