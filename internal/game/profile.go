package game

import (
	"maps"
	"slices"
)

// AdViews counts rewarded ads watched on Date.
type AdViews struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailyClaim records the last daily reward claim.
type DailyClaim struct {
	Date    string `json:"date"`
	Claimed bool   `json:"claimed"`
}

// SoundPrefs are the player's audio settings.
type SoundPrefs struct {
	Enabled bool    `json:"enabled"`
	Volume  float64 `json:"volume"`
}

// Profile is the persisted progression of a single player.
type Profile struct {
	Coins  int
	XP     int
	Level  int
	Streak int

	Completed []string
	Unlocked  []string
	Stars     map[string]int
	Badges    []Badge

	// PlayCount maps date -> stage id -> plays.
	PlayCount map[string]map[string]int
	Ads       AdViews
	Daily     *DailyClaim
	Sound     SoundPrefs
}

// NewProfile returns the profile of a player who has never played.
func NewProfile(rules Rules) Profile {
	p := Profile{
		Level:     1,
		Stars:     map[string]int{},
		PlayCount: map[string]map[string]int{},
		Sound:     SoundPrefs{Enabled: true, Volume: 0.8},
	}
	if rules.DefaultStage != "" {
		p.Unlocked = []string{rules.DefaultStage}
	}
	return p
}

// Clone returns a deep copy so that a failed operation can be discarded.
func (p Profile) Clone() Profile {
	cp := p
	cp.Completed = slices.Clone(p.Completed)
	cp.Unlocked = slices.Clone(p.Unlocked)
	cp.Badges = slices.Clone(p.Badges)
	cp.Stars = maps.Clone(p.Stars)
	if cp.Stars == nil {
		cp.Stars = map[string]int{}
	}
	cp.PlayCount = make(map[string]map[string]int, len(p.PlayCount))
	for date, counts := range p.PlayCount {
		cp.PlayCount[date] = maps.Clone(counts)
	}
	if p.Daily != nil {
		d := *p.Daily
		cp.Daily = &d
	}
	return cp
}

// Normalize repairs values that would break invariants, e.g. after loading
// hand-edited or corrupted state.
func (p *Profile) Normalize(rules Rules) {
	if p.Coins < 0 {
		p.Coins = 0
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.Streak < 0 {
		p.Streak = 0
	}
	if rules.XPPerLevel > 0 {
		p.Level += p.XP / rules.XPPerLevel
		p.XP %= rules.XPPerLevel
	}
	for id, s := range p.Stars {
		p.Stars[id] = min(max(s, 0), 3)
	}
	p.Sound.Volume = min(max(p.Sound.Volume, 0), 1)
}

func (p Profile) IsUnlocked(s Stage) bool {
	return s.Free || slices.Contains(p.Unlocked, s.ID)
}

func (p Profile) IsCompleted(stageID string) bool {
	return slices.Contains(p.Completed, stageID)
}

func (p Profile) HasBadge(b Badge) bool {
	return slices.Contains(p.Badges, b)
}

// grantBadge adds b unless already held and reports whether it was new.
func (p *Profile) grantBadge(b Badge) bool {
	if p.HasBadge(b) {
		return false
	}
	p.Badges = append(p.Badges, b)
	return true
}

func (p *Profile) unlock(stageID string) bool {
	if slices.Contains(p.Unlocked, stageID) {
		return false
	}
	p.Unlocked = append(p.Unlocked, stageID)
	return true
}

func (p *Profile) complete(stageID string) bool {
	if p.IsCompleted(stageID) {
		return false
	}
	p.Completed = append(p.Completed, stageID)
	return true
}

// raiseStars stores stars for the stage only if it beats the previous best.
func (p *Profile) raiseStars(stageID string, stars int) int {
	if p.Stars == nil {
		p.Stars = map[string]int{}
	}
	best := max(p.Stars[stageID], stars)
	p.Stars[stageID] = best
	return best
}

// addXP grants xp, rolls overflow into levels and pays the level-up bonus.
// It returns the number of levels gained.
func (p *Profile) addXP(rules Rules, xp int) int {
	if xp <= 0 {
		return 0
	}
	p.XP += xp
	if rules.XPPerLevel <= 0 {
		return 0
	}
	gained := 0
	for p.XP >= rules.XPPerLevel {
		p.XP -= rules.XPPerLevel
		p.Level++
		p.Coins += rules.LevelUpCoins
		gained++
	}
	return gained
}
