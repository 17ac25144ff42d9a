package game

import "slices"

// Reward describes what an operation granted.
type Reward struct {
	Coins  int     `json:"coins"`
	XP     int     `json:"xp"`
	Levels int     `json:"levels,omitempty"`
	Badges []Badge `json:"badges,omitempty"`
}

// StageResult is the outcome of finalizing a round.
type StageResult struct {
	StageID      string  `json:"stageId"`
	Stars        int     `json:"stars"`
	BestStars    int     `json:"bestStars"`
	CoinsAwarded int     `json:"coinsAwarded"`
	XPAwarded    int     `json:"xpAwarded"`
	LeveledUp    bool    `json:"leveledUp"`
	Badges       []Badge `json:"badges,omitempty"`
	Score        int     `json:"score"`
	Mistakes     int     `json:"mistakes"`
	Total        int     `json:"total"`
	RoundCoins   int     `json:"roundCoins"`
}

// Economy applies coin, XP, level, streak, star and badge effects to a
// profile. It never persists; callers save the profile afterwards.
type Economy struct {
	rules  Rules
	cal    Calendar
	limits Limits
}

func NewEconomy(rules Rules, cal Calendar) Economy {
	return Economy{rules: rules, cal: cal, limits: NewLimits(rules, cal)}
}

func (e Economy) Rules() Rules { return e.rules }

// AnswerResolved applies the per-answer reward. A wrong answer only resets
// the streak.
func (e Economy) AnswerResolved(p *Profile, correct bool) Reward {
	if !correct {
		p.Streak = 0
		return Reward{}
	}

	before := p.Coins
	p.Streak++
	coins := e.rules.CoinPerCorrect + e.streakBonus(p.Streak)
	p.Coins += coins

	r := Reward{XP: e.rules.XPPerCorrect}
	r.Levels = p.addXP(e.rules, e.rules.XPPerCorrect)
	if p.Streak >= e.rules.StreakBig && p.grantBadge(BadgeStreak5) {
		r.Badges = append(r.Badges, BadgeStreak5)
	}
	r.Coins = p.Coins - before
	return r
}

func (e Economy) streakBonus(streak int) int {
	switch {
	case streak >= e.rules.StreakBig:
		return e.rules.StreakBigBonus
	case streak >= e.rules.StreakSmall:
		return e.rules.StreakSmallBonus
	default:
		return 0
	}
}

// Stars rates a finished round by its mistakes.
func Stars(mistakes int) int {
	switch {
	case mistakes == 0:
		return 3
	case mistakes <= 2:
		return 2
	default:
		return 1
	}
}

// FinalizeRound pays the stage bonuses and records completion.
func (e Economy) FinalizeRound(p *Profile, s RoundSummary) StageResult {
	before := p.Coins
	stars := Stars(s.Mistakes)
	res := StageResult{
		StageID:  s.StageID,
		Stars:    stars,
		Score:    s.Score,
		Mistakes: s.Mistakes,
		Total:    s.Total,
	}

	p.Coins += e.rules.FinishBonus
	if stars == 3 {
		p.Coins += e.rules.PerfectBonus
		if p.grantBadge(BadgePerfect) {
			res.Badges = append(res.Badges, BadgePerfect)
		}
	}

	res.XPAwarded = max(0, s.Total-s.Mistakes)
	res.LeveledUp = p.addXP(e.rules, res.XPAwarded) > 0

	p.complete(s.StageID)
	res.BestStars = p.raiseStars(s.StageID, stars)
	if e.rules.CollectorStages > 0 && len(p.Completed) >= e.rules.CollectorStages && p.grantBadge(BadgeCollector) {
		res.Badges = append(res.Badges, BadgeCollector)
	}

	res.CoinsAwarded = p.Coins - before
	return res
}

// PurchaseStage debits price and unlocks the stage. Buying an unlocked stage
// again is a no-op.
func (e Economy) PurchaseStage(p *Profile, stageID string, price int) (bool, error) {
	if slices.Contains(p.Unlocked, stageID) {
		return false, nil
	}
	if err := e.debit(p, price); err != nil {
		return false, err
	}
	p.unlock(stageID)
	return true, nil
}

// ChargePowerUp debits the cost of a power-up.
func (e Economy) ChargePowerUp(p *Profile, kind PowerUp) (int, error) {
	cost, ok := e.PowerUpCost(kind)
	if !ok {
		return 0, ErrUnknownPowerUp
	}
	return cost, e.debit(p, cost)
}

func (e Economy) PowerUpCost(kind PowerUp) (int, bool) {
	cost, ok := e.rules.PowerUpCosts[kind]
	return cost, ok
}

// SkipReward grants the XP of a correct answer without coins or streak.
func (e Economy) SkipReward(p *Profile) Reward {
	before := p.Coins
	r := Reward{XP: e.rules.XPPerCorrect}
	r.Levels = p.addXP(e.rules, e.rules.XPPerCorrect)
	r.Coins = p.Coins - before
	return r
}

// ClaimDailyReward grants the once-per-date reward.
func (e Economy) ClaimDailyReward(p *Profile) (Reward, error) {
	today := e.cal.Today()
	if p.Daily != nil && p.Daily.Date == today {
		return Reward{}, ErrAlreadyClaimed
	}
	p.Coins += e.rules.DailyReward
	p.Daily = &DailyClaim{Date: today, Claimed: true}
	r := Reward{Coins: e.rules.DailyReward}
	if p.grantBadge(BadgeDaily) {
		r.Badges = append(r.Badges, BadgeDaily)
	}
	return r, nil
}

// GrantAdReward pays for a watched rewarded ad.
func (e Economy) GrantAdReward(p *Profile) (Reward, error) {
	if !e.limits.CanWatchAd(*p) {
		return Reward{}, ErrAdLimitReached
	}
	p.Coins += e.rules.AdReward
	e.limits.RecordAdView(p)
	return Reward{Coins: e.rules.AdReward}, nil
}

func (e Economy) debit(p *Profile, amount int) error {
	if p.Coins < amount {
		return &InsufficientFundsError{Need: amount, Have: p.Coins}
	}
	p.Coins -= amount
	return nil
}
