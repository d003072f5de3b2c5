// service.go applies XP awards to players and
// serves their level view.

package progression

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
)

// Award describes the effect of one XP award.
type Award struct {
	XP        int64     `json:"xp"`
	Before    LevelData `json:"-"`
	After     LevelData `json:"level"`
	LeveledUp bool      `json:"leveledUp"`
}

// LeaderboardEntry is one row of the XP ranking.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Level    int    `json:"level"`
	Title    string `json:"title"`
	TotalXP  int64  `json:"totalXp"`
}

// Service manages per-player progression.
type Service struct {
	repo *Repository
}

// NewService creates the progression service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateProgress starts a new player at zero XP.
func (s *Service) CreateProgress(ctx context.Context, playerID string) {
	s.repo.Ensure(ctx, playerID)
}

// Get returns the current level view of a player.
func (s *Service) Get(ctx context.Context, playerID string) (LevelData, error) {
	xp, ok := s.repo.Get(ctx, playerID)
	if !ok {
		return LevelData{}, common.ErrPlayerNotFound
	}
	return ComputeLevelData(xp)
}

// AwardSpin converts a spin into XP and adds it to the player.
func (s *Service) AwardSpin(ctx context.Context, playerID string, bet decimal.Decimal, won bool) (*Award, error) {
	xp, err := XPGain(bet, won)
	if err != nil {
		return nil, err
	}
	if _, ok := s.repo.Get(ctx, playerID); !ok {
		return nil, common.ErrPlayerNotFound
	}

	beforeXP, afterXP := s.repo.Add(ctx, playerID, xp)

	before, err := ComputeLevelData(beforeXP)
	if err != nil {
		return nil, fmt.Errorf("level before award: %w", err)
	}
	after, err := ComputeLevelData(afterXP)
	if err != nil {
		return nil, fmt.Errorf("level after award: %w", err)
	}

	award := &Award{
		XP:        xp,
		Before:    before,
		After:     after,
		LeveledUp: after.Level > before.Level,
	}

	if award.LeveledUp {
		log.WithFields(log.Fields{
			"player_id": playerID,
			"from":      before.Level,
			"to":        after.Level,
			"title":     after.Title,
		}).Info("Player leveled up")
	}

	return award, nil
}

// NextMilestone returns the next tier threshold for the player.
func (s *Service) NextMilestone(ctx context.Context, playerID string) (*Milestone, LevelData, error) {
	data, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, LevelData{}, err
	}
	m, ok, err := NextMilestone(data.Level)
	if err != nil {
		return nil, data, err
	}
	if !ok {
		return nil, data, nil
	}
	return &m, data, nil
}

// Leaderboard ranks players by total XP.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	records := s.repo.Top(ctx, limit)
	entries := make([]LeaderboardEntry, 0, len(records))
	for i, rec := range records {
		data, err := ComputeLevelData(rec.TotalXP)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{
			Rank:     i + 1,
			PlayerID: rec.PlayerID,
			Level:    data.Level,
			Title:    data.Title,
			TotalXP:  rec.TotalXP,
		})
	}
	return entries, nil
}
