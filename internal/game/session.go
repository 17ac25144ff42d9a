package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownAdPurpose = errors.New("unknown ad purpose")

// Deps are the collaborators shared by every session.
type Deps struct {
	Store     ProfileStore
	Stages    StageSource
	Rules     Rules
	Calendar  Calendar
	Publisher Publisher
	Logger    *slog.Logger
	// NewRand seeds the per-session random source. Nil means random seeds.
	NewRand func() *rand.Rand
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.NewRand == nil {
		d.NewRand = func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }
	}
	return d
}

// AdPurpose selects what a watched rewarded ad pays out.
type AdPurpose string

const (
	AdForCoins        AdPurpose = "coins"
	AdForExtraAttempt AdPurpose = "extra_attempt"
)

// AdTicket is a started rewarded ad. It can be closed for its reward once
// Seconds have elapsed.
type AdTicket struct {
	ID        string    `json:"id"`
	Purpose   AdPurpose `json:"purpose"`
	StageID   string    `json:"stageId,omitempty"`
	Image     string    `json:"image,omitempty"`
	Seconds   int       `json:"seconds"`
	StartedAt time.Time `json:"startedAt"`
}

// Play is the presentable state of the active round.
type Play struct {
	StageID   string   `json:"stageId"`
	Title     string   `json:"title"`
	Number    int      `json:"number"`
	Total     int      `json:"total"`
	Image     string   `json:"image,omitempty"`
	Options   []Option `json:"options"`
	Resolved  bool     `json:"resolved"`
	Answer    string   `json:"answer,omitempty"`
	Score     int      `json:"score"`
	Mistakes  int      `json:"mistakes"`
	Remaining int      `json:"remaining"`
}

type StartResult struct {
	Play       Play `json:"play"`
	PlaysToday int  `json:"playsToday"`
	PlaysLeft  int  `json:"playsLeft"`
}

type AnswerResult struct {
	Outcome AnswerOutcome `json:"outcome"`
	Reward  Reward        `json:"reward"`
	Play    Play          `json:"play"`
	Coins   int           `json:"coins"`
	Streak  int           `json:"streak"`
	Cue     Cue           `json:"cue"`
}

// NextResult holds either the next question or the finished stage.
type NextResult struct {
	Play   *Play        `json:"play,omitempty"`
	Result *StageResult `json:"result,omitempty"`
	Cue    Cue          `json:"cue"`
}

type PowerUpResult struct {
	Kind       PowerUp     `json:"kind"`
	Cost       int         `json:"cost"`
	Coins      int         `json:"coins"`
	Eliminated []string    `json:"eliminated,omitempty"`
	Hint       string      `json:"hint,omitempty"`
	Reward     *Reward     `json:"reward,omitempty"`
	Next       *NextResult `json:"next,omitempty"`
	Play       *Play       `json:"play,omitempty"`
	Cue        Cue         `json:"cue"`
}

type PurchaseResult struct {
	StageID string `json:"stageId"`
	Price   int    `json:"price"`
	Bought  bool   `json:"bought"`
	Coins   int    `json:"coins"`
	Cue     Cue    `json:"cue"`
}

type AdResult struct {
	Purpose   AdPurpose `json:"purpose"`
	Reward    Reward    `json:"reward"`
	StageID   string    `json:"stageId,omitempty"`
	PlaysLeft int       `json:"playsLeft,omitempty"`
	AdsLeft   int       `json:"adsLeft"`
	Coins     int       `json:"coins"`
	Cue       Cue       `json:"cue"`
}

// ProfileView is the read model of a profile.
type ProfileView struct {
	Coins        int            `json:"coins"`
	XP           int            `json:"xp"`
	XPPerLevel   int            `json:"xpPerLevel"`
	Level        int            `json:"level"`
	Streak       int            `json:"streak"`
	Completed    []string       `json:"completed"`
	Unlocked     []string       `json:"unlocked"`
	Stars        map[string]int `json:"stars"`
	Badges       []Badge        `json:"badges"`
	AdsLeft      int            `json:"adsLeft"`
	DailyClaimed bool           `json:"dailyClaimed"`
	Sound        SoundPrefs     `json:"sound"`
	InRound      bool           `json:"inRound"`
}

// StageCard is one entry of the player's stage list.
type StageCard struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Free       bool   `json:"free"`
	Price      int    `json:"price"`
	Actors     int    `json:"actors"`
	Locked     bool   `json:"locked"`
	Completed  bool   `json:"completed"`
	Stars      int    `json:"stars"`
	PlaysToday int    `json:"playsToday"`
	PlaysLeft  int    `json:"playsLeft"`
}

// Session owns one player's profile and active round. Every intent runs
// under the session lock against clones; state is replaced only after the
// profile has been saved.
type Session struct {
	mu       sync.Mutex
	playerID string
	deps     Deps
	econ     Economy
	limits   Limits
	rng      *rand.Rand

	profile Profile
	round   *Round
	ad      *AdTicket

	// seen is the unix-nano time of the last lookup through Sessions.
	seen atomic.Int64
}

func NewSession(playerID string, p Profile, deps Deps) *Session {
	deps = deps.withDefaults()
	return &Session{
		playerID: playerID,
		deps:     deps,
		econ:     NewEconomy(deps.Rules, deps.Calendar),
		limits:   NewLimits(deps.Rules, deps.Calendar),
		rng:      deps.NewRand(),
		profile:  p,
	}
}

func (s *Session) PlayerID() string { return s.playerID }

// Profile returns a copy of the current profile.
func (s *Session) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

func (s *Session) View() ProfileView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(s.profile)
}

func (s *Session) view(p Profile) ProfileView {
	v := ProfileView{
		Coins:        p.Coins,
		XP:           p.XP,
		XPPerLevel:   s.deps.Rules.XPPerLevel,
		Level:        p.Level,
		Streak:       p.Streak,
		Completed:    append([]string{}, p.Completed...),
		Unlocked:     append([]string{}, p.Unlocked...),
		Stars:        map[string]int{},
		Badges:       append([]Badge{}, p.Badges...),
		AdsLeft:      s.limits.AdsLeft(p),
		DailyClaimed: p.Daily != nil && p.Daily.Date == s.deps.Calendar.Today(),
		Sound:        p.Sound,
		InRound:      s.round != nil,
	}
	for id, n := range p.Stars {
		v.Stars[id] = n
	}
	return v
}

// Stages renders the catalog snapshot from this player's point of view.
func (s *Session) Stages(stages []Stage) []StageCard {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards := make([]StageCard, 0, len(stages))
	for _, st := range stages {
		title := st.Title
		if title == "" {
			title = st.ID
		}
		cards = append(cards, StageCard{
			ID:         st.ID,
			Title:      title,
			Free:       st.Free,
			Price:      st.UnlockPrice(s.deps.Rules.DefaultPrice),
			Actors:     len(st.Actors),
			Locked:     !s.profile.IsUnlocked(st),
			Completed:  s.profile.IsCompleted(st.ID),
			Stars:      s.profile.Stars[st.ID],
			PlaysToday: s.limits.PlaysToday(s.profile, st.ID),
			PlaysLeft:  s.limits.PlaysLeft(s.profile, st.ID),
		})
	}
	return cards
}

// StartStage gates and begins a round, discarding any round in progress.
func (s *Session) StartStage(ctx context.Context, stageID string) (StartResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage, err := s.deps.Stages.ReadOnce(ctx, stageID)
	if err != nil {
		return StartResult{}, err
	}

	p, err := s.fresh(ctx)
	if err != nil {
		return StartResult{}, err
	}
	r, err := StartRound(stage, p.IsUnlocked(stage), s.rng)
	if err != nil {
		return StartResult{}, err
	}
	if !s.limits.CanPlay(p, stage.ID) {
		return StartResult{}, ErrPlayLimitReached
	}
	s.limits.RecordPlay(&p, stage.ID)

	if err := s.commit(ctx, p, r); err != nil {
		return StartResult{}, err
	}
	return StartResult{
		Play:       playOf(r),
		PlaysToday: s.limits.PlaysToday(p, stage.ID),
		PlaysLeft:  s.limits.PlaysLeft(p, stage.ID),
	}, nil
}

// Current returns the active question.
func (s *Session) Current() (Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		return Play{}, ErrNoRound
	}
	return playOf(s.round), nil
}

// Answer judges a label and applies the per-answer reward.
func (s *Session) Answer(ctx context.Context, label string) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return AnswerResult{}, ErrNoRound
	}
	r := s.round.Clone()
	out, err := r.Submit(label)
	if err != nil {
		return AnswerResult{}, err
	}
	if out.Repeated {
		return AnswerResult{
			Outcome: out,
			Play:    playOf(r),
			Coins:   s.profile.Coins,
			Streak:  s.profile.Streak,
			Cue:     CueClick,
		}, nil
	}

	p, err := s.fresh(ctx)
	if err != nil {
		return AnswerResult{}, err
	}
	reward := s.econ.AnswerResolved(&p, out.Correct)
	r.CoinsEarned += reward.Coins

	events := []Event{{Type: EventAnswerResolved, StageID: r.StageID, Correct: out.Correct, Coins: p.Coins}}
	events = append(events, rewardEvents(p, r.StageID, reward)...)
	if err := s.commit(ctx, p, r, events...); err != nil {
		return AnswerResult{}, err
	}

	cue := CueFail
	if out.Correct {
		cue = CueSuccess
	}
	return AnswerResult{
		Outcome: out,
		Reward:  reward,
		Play:    playOf(r),
		Coins:   p.Coins,
		Streak:  p.Streak,
		Cue:     cue,
	}, nil
}

// Next advances past the answered question, finalizing the stage after the
// last one.
func (s *Session) Next(ctx context.Context) (NextResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return NextResult{}, ErrNoRound
	}
	r := s.round.Clone()
	p, err := s.fresh(ctx)
	if err != nil {
		return NextResult{}, err
	}
	res, events, err := s.advance(&p, r)
	if err != nil {
		return NextResult{}, err
	}
	if res.Result == nil {
		s.round = r
		return res, nil
	}
	if err := s.commit(ctx, p, nil, events...); err != nil {
		return NextResult{}, err
	}
	return res, nil
}

func (s *Session) advance(p *Profile, r *Round) (NextResult, []Event, error) {
	step, err := r.Advance()
	if err != nil {
		return NextResult{}, nil, err
	}
	if !step.Complete {
		play := playOf(r)
		return NextResult{Play: &play, Cue: CueClick}, nil, nil
	}
	if !r.markFinalized() {
		return NextResult{}, nil, ErrRoundComplete
	}

	res := s.econ.FinalizeRound(p, step.Summary)
	res.RoundCoins = r.CoinsEarned + res.CoinsAwarded

	events := []Event{{Type: EventRoundComplete, StageID: r.StageID, Coins: p.Coins, Stars: res.Stars}}
	events = append(events, rewardEvents(*p, r.StageID, Reward{
		Coins:  res.CoinsAwarded,
		Badges: res.Badges,
		Levels: boolInt(res.LeveledUp),
	})...)
	return NextResult{Result: &res, Cue: CueCoin}, events, nil
}

// Leave abandons the active round without finalizing it.
func (s *Session) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = nil
}

// BuyStage unlocks a paid stage for its price.
func (s *Session) BuyStage(ctx context.Context, stageID string) (PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage, err := s.deps.Stages.ReadOnce(ctx, stageID)
	if err != nil {
		return PurchaseResult{}, err
	}
	p, err := s.fresh(ctx)
	if err != nil {
		return PurchaseResult{}, err
	}
	price := stage.UnlockPrice(s.deps.Rules.DefaultPrice)
	res := PurchaseResult{StageID: stage.ID, Price: price, Coins: p.Coins, Cue: CueClick}
	if stage.Free {
		return res, nil
	}

	bought, err := s.econ.PurchaseStage(&p, stage.ID, price)
	if err != nil {
		return PurchaseResult{}, err
	}
	if !bought {
		return res, nil
	}
	if err := s.commit(ctx, p, s.round,
		Event{Type: EventStageUnlocked, StageID: stage.ID, Coins: p.Coins},
		Event{Type: EventCoinsChanged, Coins: p.Coins},
	); err != nil {
		return PurchaseResult{}, err
	}
	res.Bought = true
	res.Coins = p.Coins
	res.Cue = CueCoin
	return res, nil
}

// UsePowerUp buys and applies a power-up to the current question.
func (s *Session) UsePowerUp(ctx context.Context, kind PowerUp) (PowerUpResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return PowerUpResult{}, ErrNoRound
	}
	r := s.round.Clone()
	if err := r.openQuestion(); err != nil {
		return PowerUpResult{}, err
	}

	p, err := s.fresh(ctx)
	if err != nil {
		return PowerUpResult{}, err
	}
	cost, err := s.econ.ChargePowerUp(&p, kind)
	if err != nil {
		return PowerUpResult{}, err
	}
	res := PowerUpResult{Kind: kind, Cost: cost, Cue: CueCoin}
	events := []Event{{Type: EventCoinsChanged, StageID: r.StageID, Coins: p.Coins}}

	switch kind {
	case PowerUpRemove2:
		if res.Eliminated, err = r.Eliminate(2); err != nil {
			return PowerUpResult{}, err
		}
	case PowerUpFirstLetter:
		if res.Hint, err = r.Hint(); err != nil {
			return PowerUpResult{}, err
		}
		res.Cue = CueClick
	case PowerUpSkip:
		if _, err := r.ForceCorrect(); err != nil {
			return PowerUpResult{}, err
		}
		reward := s.econ.SkipReward(&p)
		r.CoinsEarned += reward.Coins
		res.Reward = &reward
		events = append(events, rewardEvents(p, r.StageID, Reward{Levels: reward.Levels})...)

		next, more, err := s.advance(&p, r)
		if err != nil {
			return PowerUpResult{}, err
		}
		res.Next = &next
		events = append(events, more...)
		res.Cue = CueSuccess
	}

	round := r
	if res.Next != nil && res.Next.Result != nil {
		round = nil
	} else {
		play := playOf(r)
		res.Play = &play
	}
	if err := s.commit(ctx, p, round, events...); err != nil {
		return PowerUpResult{}, err
	}
	res.Coins = p.Coins
	return res, nil
}

// StartAd begins a rewarded ad. Only one ad can be pending at a time; a new
// one replaces the previous.
func (s *Session) StartAd(ctx context.Context, purpose AdPurpose, stageID string) (AdTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if purpose != AdForCoins && purpose != AdForExtraAttempt {
		return AdTicket{}, ErrUnknownAdPurpose
	}
	p, err := s.fresh(ctx)
	if err != nil {
		return AdTicket{}, err
	}

	switch purpose {
	case AdForCoins:
		stageID = ""
	case AdForExtraAttempt:
		// An extra attempt is only worth an ad view on a playable stage
		// that has used up today's plays.
		stage, err := s.deps.Stages.ReadOnce(ctx, stageID)
		if err != nil {
			return AdTicket{}, err
		}
		if !p.IsUnlocked(stage) {
			return AdTicket{}, ErrStageLocked
		}
		if s.limits.CanPlay(p, stage.ID) {
			return AdTicket{}, ErrPlaysRemaining
		}
	}
	if !s.limits.CanWatchAd(p) {
		return AdTicket{}, ErrAdLimitReached
	}

	t := AdTicket{
		ID:        uuid.NewString(),
		Purpose:   purpose,
		StageID:   stageID,
		Seconds:   int(s.deps.Rules.AdDuration / time.Second),
		StartedAt: s.deps.Calendar.now(),
	}
	if imgs := s.deps.Rules.AdImages; len(imgs) > 0 {
		t.Image = imgs[s.limits.AdViewsToday(p)%len(imgs)]
	}
	s.ad = &t
	return t, nil
}

// CloseAd grants the reward of a finished ad.
func (s *Session) CloseAd(ctx context.Context, adID string) (AdResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ad == nil || s.ad.ID != adID {
		return AdResult{}, ErrAdNotFound
	}
	t := *s.ad
	if s.deps.Calendar.now().Sub(t.StartedAt) < s.deps.Rules.AdDuration {
		return AdResult{}, ErrAdNotFinished
	}

	p, err := s.fresh(ctx)
	if err != nil {
		return AdResult{}, err
	}
	res := AdResult{Purpose: t.Purpose, StageID: t.StageID, Cue: CueCoin}
	var events []Event
	switch t.Purpose {
	case AdForCoins:
		reward, err := s.econ.GrantAdReward(&p)
		if err != nil {
			return AdResult{}, err
		}
		res.Reward = reward
		events = append(events, Event{Type: EventCoinsChanged, Coins: p.Coins})
	case AdForExtraAttempt:
		if !s.limits.CanWatchAd(p) {
			return AdResult{}, ErrAdLimitReached
		}
		s.limits.RecordAdView(&p)
		s.limits.GrantExtraAttempt(&p, t.StageID)
		res.PlaysLeft = s.limits.PlaysLeft(p, t.StageID)
		res.Cue = CueClick
	}

	if err := s.commit(ctx, p, s.round, events...); err != nil {
		return AdResult{}, err
	}
	s.ad = nil
	res.AdsLeft = s.limits.AdsLeft(p)
	res.Coins = p.Coins
	s.deps.Logger.Info("rewarded ad granted",
		"player_id", s.playerID,
		"purpose", t.Purpose,
		"stage_id", t.StageID,
	)
	return res, nil
}

// ClaimDaily grants the daily reward once per calendar date.
func (s *Session) ClaimDaily(ctx context.Context) (Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.fresh(ctx)
	if err != nil {
		return Reward{}, err
	}
	reward, err := s.econ.ClaimDailyReward(&p)
	if err != nil {
		return Reward{}, err
	}
	if err := s.commit(ctx, p, s.round, rewardEvents(p, "", reward)...); err != nil {
		return Reward{}, err
	}
	s.deps.Logger.Info("daily reward claimed", "player_id", s.playerID, "coins", reward.Coins)
	return reward, nil
}

// SetSound updates the audio preferences; nil fields are left unchanged.
func (s *Session) SetSound(ctx context.Context, enabled *bool, volume *float64) (SoundPrefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.fresh(ctx)
	if err != nil {
		return SoundPrefs{}, err
	}
	if enabled != nil {
		p.Sound.Enabled = *enabled
	}
	if volume != nil {
		p.Sound.Volume = min(max(*volume, 0), 1)
	}
	if err := s.commit(ctx, p, s.round); err != nil {
		return SoundPrefs{}, err
	}
	return p.Sound, nil
}

// fresh reloads the stored profile before an intent mutates it, so that a
// save made by another process is built upon rather than overwritten. Must
// be called with mu held.
func (s *Session) fresh(ctx context.Context) (Profile, error) {
	p := s.profile.Clone()
	if err := s.deps.Store.LoadProfile(ctx, s.playerID, &p); err != nil {
		return Profile{}, fmt.Errorf("reloading profile: %w", err)
	}
	p.Normalize(s.deps.Rules)
	s.profile = p
	return p.Clone(), nil
}

func (s *Session) commit(ctx context.Context, p Profile, r *Round, events ...Event) error {
	if err := s.deps.Store.SaveProfile(ctx, s.playerID, p); err != nil {
		s.deps.Logger.Warn("saving profile failed", "player_id", s.playerID, "error", err)
		return fmt.Errorf("saving profile: %w", err)
	}
	s.profile = p
	s.round = r
	for _, ev := range events {
		s.deps.Publisher.Publish(s.playerID, ev)
	}
	return nil
}

func rewardEvents(p Profile, stageID string, r Reward) []Event {
	var events []Event
	if r.Coins != 0 {
		events = append(events, Event{Type: EventCoinsChanged, StageID: stageID, Coins: p.Coins})
	}
	if r.Levels > 0 {
		events = append(events, Event{Type: EventLevelUp, StageID: stageID, Coins: p.Coins, Level: p.Level})
	}
	for _, b := range r.Badges {
		events = append(events, Event{Type: EventBadgeEarned, StageID: stageID, Coins: p.Coins, Badge: b})
	}
	return events
}

func playOf(r *Round) Play {
	q, _ := r.Current()
	play := Play{
		StageID:   r.StageID,
		Title:     r.Title,
		Number:    q.Index + 1,
		Total:     len(r.Actors),
		Image:     q.Image,
		Options:   q.Options,
		Resolved:  q.Resolved,
		Score:     r.Score,
		Mistakes:  r.Mistakes,
		Remaining: max(0, len(r.Actors)-(r.Index+1)),
	}
	if q.Resolved {
		play.Answer = q.ActorName
	}
	return play
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
