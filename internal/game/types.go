// Package game implements the quiz round, the coin/XP economy and the daily
// limits of the actor guessing game. It has no storage or transport
// dependencies; persistence goes through ProfileStore.
package game

import (
	"net/url"
	"time"
)

// Actor is one quiz item.
type Actor struct {
	Name    string   `json:"name"`
	Image   string   `json:"image"`
	Options []string `json:"options"`
}

// Stage is a catalog entry. Price is nil when the admin did not set one.
type Stage struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Free   bool    `json:"free"`
	Price  *int    `json:"price,omitempty"`
	Actors []Actor `json:"actors"`
}

// UnlockPrice returns the stage price, falling back to def when unset.
func (s Stage) UnlockPrice(def int) int {
	if s.Price == nil {
		return def
	}
	return *s.Price
}

// Badge identifies a write-once achievement.
type Badge string

const (
	BadgePerfect   Badge = "perfect"
	BadgeCollector Badge = "collector"
	BadgeStreak5   Badge = "streak5"
	BadgeDaily     Badge = "daily"
)

// Cue names a sound the presentation layer may play.
type Cue string

const (
	CueClick   Cue = "click"
	CueSuccess Cue = "success"
	CueFail    Cue = "fail"
	CueCoin    Cue = "coin"
)

// PowerUp is a coin-priced aid for the current question.
type PowerUp string

const (
	PowerUpRemove2     PowerUp = "remove2"
	PowerUpFirstLetter PowerUp = "firstLetter"
	PowerUpSkip        PowerUp = "skip"
)

// Rules holds every balancing constant of the economy and limits.
type Rules struct {
	CoinPerCorrect   int
	StreakSmall      int
	StreakSmallBonus int
	StreakBig        int
	StreakBigBonus   int

	XPPerCorrect int
	XPPerLevel   int
	LevelUpCoins int

	FinishBonus  int
	PerfectBonus int

	PowerUpCosts map[PowerUp]int

	DailyReward int
	AdReward    int
	AdsPerDay   int
	AdDuration  time.Duration
	AdImages    []string

	PlaysPerStagePerDay int
	DefaultPrice        int
	DefaultStage        string
	CollectorStages     int
}

// DefaultRules returns the stock balancing.
func DefaultRules() Rules {
	return Rules{
		CoinPerCorrect:   2,
		StreakSmall:      3,
		StreakSmallBonus: 1,
		StreakBig:        5,
		StreakBigBonus:   3,
		XPPerCorrect:     5,
		XPPerLevel:       50,
		LevelUpCoins:     5,
		FinishBonus:      10,
		PerfectBonus:     5,
		PowerUpCosts: map[PowerUp]int{
			PowerUpRemove2:     8,
			PowerUpFirstLetter: 6,
			PowerUpSkip:        12,
		},
		DailyReward:         40,
		AdReward:            20,
		AdsPerDay:           2,
		AdDuration:          5 * time.Second,
		PlaysPerStagePerDay: 2,
		DefaultPrice:        20,
		DefaultStage:        "stage1",
		CollectorStages:     5,
	}
}

// Calendar resolves "today" for daily buckets.
type Calendar struct {
	Now      func() time.Time
	Location *time.Location
}

func (c Calendar) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today returns the current calendar date as YYYY-MM-DD.
func (c Calendar) Today() string {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return c.now().In(loc).Format(time.DateOnly)
}

// PresentableImage reports whether an image URL may be shown to players.
func PresentableImage(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "https" || u.Scheme == "data"
}
