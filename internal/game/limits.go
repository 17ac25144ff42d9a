package game

// Limits enforces per-day play counts per stage and per-day ad views.
//
// Only today's play-count bucket is retained: the first play recorded on a
// new date evicts every older bucket.
type Limits struct {
	rules Rules
	cal   Calendar
}

func NewLimits(rules Rules, cal Calendar) Limits {
	return Limits{rules: rules, cal: cal}
}

// PlaysToday returns how many times the stage was started today.
func (l Limits) PlaysToday(p Profile, stageID string) int {
	return p.PlayCount[l.cal.Today()][stageID]
}

// PlaysLeft returns how many starts remain today for the stage.
func (l Limits) PlaysLeft(p Profile, stageID string) int {
	return max(0, l.rules.PlaysPerStagePerDay-l.PlaysToday(p, stageID))
}

func (l Limits) CanPlay(p Profile, stageID string) bool {
	return l.PlaysToday(p, stageID) < l.rules.PlaysPerStagePerDay
}

func (l Limits) RecordPlay(p *Profile, stageID string) {
	today := l.todayBucket(p)
	today[stageID]++
}

// GrantExtraAttempt gives back one of today's plays for the stage.
func (l Limits) GrantExtraAttempt(p *Profile, stageID string) {
	today := l.todayBucket(p)
	today[stageID] = max(0, today[stageID]-1)
}

func (l Limits) todayBucket(p *Profile) map[string]int {
	t := l.cal.Today()
	if bucket, ok := p.PlayCount[t]; ok {
		return bucket
	}
	p.PlayCount = map[string]map[string]int{t: {}}
	return p.PlayCount[t]
}

// AdViewsToday returns the rewarded ads watched today.
func (l Limits) AdViewsToday(p Profile) int {
	if p.Ads.Date != l.cal.Today() {
		return 0
	}
	return p.Ads.Count
}

func (l Limits) AdsLeft(p Profile) int {
	return max(0, l.rules.AdsPerDay-l.AdViewsToday(p))
}

func (l Limits) CanWatchAd(p Profile) bool {
	return l.AdViewsToday(p) < l.rules.AdsPerDay
}

func (l Limits) RecordAdView(p *Profile) {
	t := l.cal.Today()
	if p.Ads.Date != t {
		p.Ads = AdViews{Date: t}
	}
	p.Ads.Count++
}
