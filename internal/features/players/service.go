// service.go registers players and assembles their profile.

package players

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/features/progression"
	"roleta.com.br/server/internal/features/wallet"
)

// Profile is what GET /api/players/me returns.
type Profile struct {
	Player
	Wallet *wallet.Balance        `json:"wallet"`
	Level  *progression.LevelData `json:"level"`
}

// Service manages the player registry.
type Service struct {
	repo        *Repository
	wallet      *wallet.Service
	progression *progression.Service
	now         func() time.Time
}

// NewService creates the players service.
func NewService(repo *Repository, walletService *wallet.Service, progressionService *progression.Service) *Service {
	return &Service{
		repo:        repo,
		wallet:      walletService,
		progression: progressionService,
		now:         time.Now,
	}
}

// NormalizeName trims and collapses whitespace and checks the length.
func NormalizeName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	n := utf8.RuneCountInString(name)
	if n < minNameLen || n > maxNameLen {
		return "", common.ErrInvalidPlayerName
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", common.ErrInvalidPlayerName
		}
	}
	return name, nil
}

// Register creates a player with an empty progression and a funded wallet.
func (s *Service) Register(ctx context.Context, name string) (*Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	p := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now(),
	}

	if err := s.wallet.CreateWallet(ctx, p.ID); err != nil {
		return nil, err
	}
	s.progression.CreateProgress(ctx, p.ID)
	s.repo.Create(ctx, p)

	log.WithFields(log.Fields{
		"player_id": p.ID,
		"name":      p.Name,
	}).Info("New player registered")

	return p, nil
}

// Get returns a player by id.
func (s *Service) Get(ctx context.Context, id string) (*Player, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists reports whether id is a registered player.
func (s *Service) Exists(ctx context.Context, id string) bool {
	return s.repo.Exists(ctx, id)
}

// Profile joins the player with wallet and level.
func (s *Service) Profile(ctx context.Context, id string) (*Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := s.wallet.GetBalance(ctx, id)
	if err != nil {
		return nil, err
	}
	lvl, err := s.progression.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{Player: *p, Wallet: b, Level: &lvl}, nil
}

// Count returns the number of players.
func (s *Service) Count(ctx context.Context) int {
	return s.repo.Count(ctx)
}
