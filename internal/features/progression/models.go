// Package progression computes player levels from accumulated XP.
// models.go describes the level view, the tier table and the perk table.
package progression

// LevelData is a read-only view derived from a single total XP value.
// It is recomputed on every read and never mutated in place.
type LevelData struct {
	TotalXP       int64    `json:"totalXp"`
	Level         int      `json:"level"`
	CurrentXP     int64    `json:"currentXp"`     // XP earned inside the current level
	XPToNextLevel int64    `json:"xpToNextLevel"` // cost of the current level
	Title         string   `json:"title"`
	Color         string   `json:"color"`
	Perks         []string `json:"perks"`
}

// Progress returns how far the player is into the current level, in [0,1).
func (d LevelData) Progress() float64 {
	if d.XPToNextLevel <= 0 {
		return 0
	}
	return float64(d.CurrentXP) / float64(d.XPToNextLevel)
}

// Tier is a cosmetic title that applies from MinLevel upwards.
type Tier struct {
	MinLevel int
	Title    string
	Color    string
}

// Tiers must stay sorted by MinLevel ascending; the first entry starts at level 1.
var Tiers = []Tier{
	{MinLevel: 1, Title: "Novato", Color: "#A0A0A0"},
	{MinLevel: 5, Title: "Iniciante", Color: "#8B8B8B"},
	{MinLevel: 10, Title: "Jogador", Color: "#C0C0C0"},
	{MinLevel: 15, Title: "Experiente", Color: "#87CEEB"},
	{MinLevel: 20, Title: "Profissional", Color: "#4169E1"},
	{MinLevel: 25, Title: "Elite", Color: "#9370DB"},
	{MinLevel: 30, Title: "Mestre", Color: "#D4AF37"},
	{MinLevel: 40, Title: "Lenda", Color: "#FF6B35"},
	{MinLevel: 50, Title: "Campeão", Color: "#FF1744"},
}

// Perk is a benefit unlocked at MinLevel. Perks never expire.
type Perk struct {
	MinLevel    int
	Description string
}

// Perks sorted by MinLevel ascending.
var Perks = []Perk{
	{MinLevel: 5, Description: "Cashback de 1% em perdas"},
	{MinLevel: 10, Description: "Bônus diário de R$5"},
	{MinLevel: 15, Description: "Cashback de 2% em perdas"},
	{MinLevel: 20, Description: "Saque prioritário"},
	{MinLevel: 25, Description: "Cashback de 3% em perdas"},
	{MinLevel: 30, Description: "Gerente VIP dedicado"},
	{MinLevel: 40, Description: "Cashback de 5% em perdas"},
	{MinLevel: 50, Description: "Torneios exclusivos"},
}

// Milestone is the next tier threshold ahead of a player.
type Milestone struct {
	Level      int    `json:"level"`
	Title      string `json:"title"`
	RequiredXP int64  `json:"requiredXp"` // total XP needed to reach Level
}
