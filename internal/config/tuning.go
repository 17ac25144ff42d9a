package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/playperu/guessactor/internal/game"
)

//go:embed tuning.yaml
var defaultTuningYAML []byte

// Tuning is the YAML form of the economy rules.
type Tuning struct {
	Answers struct {
		CoinPerCorrect int `yaml:"coin_per_correct"`
		XPPerCorrect   int `yaml:"xp_per_correct"`
	} `yaml:"answers"`
	Streak struct {
		SmallAt    int `yaml:"small_at"`
		SmallBonus int `yaml:"small_bonus"`
		BigAt      int `yaml:"big_at"`
		BigBonus   int `yaml:"big_bonus"`
	} `yaml:"streak"`
	Levels struct {
		XPPerLevel   int `yaml:"xp_per_level"`
		LevelUpCoins int `yaml:"level_up_coins"`
	} `yaml:"levels"`
	Stage struct {
		FinishBonus        int    `yaml:"finish_bonus"`
		PerfectBonus       int    `yaml:"perfect_bonus"`
		DefaultPrice       int    `yaml:"default_price"`
		DefaultFree        string `yaml:"default_free"`
		PlaysPerDay        int    `yaml:"plays_per_day"`
		CollectorThreshold int    `yaml:"collector_threshold"`
	} `yaml:"stage"`
	PowerUps struct {
		Remove2     int `yaml:"remove2"`
		FirstLetter int `yaml:"first_letter"`
		Skip        int `yaml:"skip"`
	} `yaml:"power_ups"`
	DailyReward int `yaml:"daily_reward"`
	Ads         struct {
		Reward  int      `yaml:"reward"`
		PerDay  int      `yaml:"per_day"`
		Seconds int      `yaml:"seconds"`
		Images  []string `yaml:"images"`
	} `yaml:"ads"`
}

// LoadTuning reads the embedded defaults and overlays customPath when set.
func LoadTuning(customPath string) (Tuning, error) {
	var t Tuning
	if err := yaml.Unmarshal(defaultTuningYAML, &t); err != nil {
		return t, fmt.Errorf("parsing default tuning: %w", err)
	}
	if customPath == "" {
		return t, nil
	}

	data, err := os.ReadFile(customPath)
	if err != nil {
		return t, fmt.Errorf("reading tuning %s: %w", customPath, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parsing tuning %s: %w", customPath, err)
	}
	if err := t.validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", customPath, err)
	}
	return t, nil
}

func (t Tuning) validate() error {
	switch {
	case t.Levels.XPPerLevel <= 0:
		return fmt.Errorf("levels.xp_per_level must be positive")
	case t.Stage.PlaysPerDay <= 0:
		return fmt.Errorf("stage.plays_per_day must be positive")
	case t.Ads.Seconds < 0:
		return fmt.Errorf("ads.seconds must not be negative")
	case t.Streak.BigAt < t.Streak.SmallAt:
		return fmt.Errorf("streak.big_at must not be below streak.small_at")
	}
	return nil
}

// Rules converts the tuning into game rules.
func (t Tuning) Rules() game.Rules {
	return game.Rules{
		CoinPerCorrect:   t.Answers.CoinPerCorrect,
		StreakSmall:      t.Streak.SmallAt,
		StreakSmallBonus: t.Streak.SmallBonus,
		StreakBig:        t.Streak.BigAt,
		StreakBigBonus:   t.Streak.BigBonus,
		XPPerCorrect:     t.Answers.XPPerCorrect,
		XPPerLevel:       t.Levels.XPPerLevel,
		LevelUpCoins:     t.Levels.LevelUpCoins,
		FinishBonus:      t.Stage.FinishBonus,
		PerfectBonus:     t.Stage.PerfectBonus,
		PowerUpCosts: map[game.PowerUp]int{
			game.PowerUpRemove2:     t.PowerUps.Remove2,
			game.PowerUpFirstLetter: t.PowerUps.FirstLetter,
			game.PowerUpSkip:        t.PowerUps.Skip,
		},
		DailyReward:         t.DailyReward,
		AdReward:            t.Ads.Reward,
		AdsPerDay:           t.Ads.PerDay,
		AdDuration:          time.Duration(t.Ads.Seconds) * time.Second,
		AdImages:            t.Ads.Images,
		PlaysPerStagePerDay: t.Stage.PlaysPerDay,
		DefaultPrice:        t.Stage.DefaultPrice,
		DefaultStage:        t.Stage.DefaultFree,
		CollectorStages:     t.Stage.CollectorThreshold,
	}
}
