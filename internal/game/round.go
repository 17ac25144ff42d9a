package game

import (
	"math/rand/v2"
	"slices"
)

// Option is one multiple-choice button of the current question.
type Option struct {
	Label      string `json:"label"`
	Eliminated bool   `json:"eliminated,omitempty"`
	Hint       bool   `json:"hint,omitempty"`

	name string
}

// Question is the presentable view of the current actor.
type Question struct {
	Index     int
	Total     int
	ActorName string
	Image     string
	Options   []Option
	Resolved  bool
}

// AnswerOutcome is the judgement of one question.
type AnswerOutcome struct {
	Correct     bool   `json:"correct"`
	CorrectName string `json:"correctName"`
	Skipped     bool   `json:"skipped,omitempty"`
	// Repeated is set when the question had already been resolved and the
	// submission changed nothing.
	Repeated bool `json:"repeated,omitempty"`
}

// RoundSummary is what a finished round hands to the economy.
type RoundSummary struct {
	StageID  string `json:"stageId"`
	Score    int    `json:"score"`
	Mistakes int    `json:"mistakes"`
	Total    int    `json:"total"`
}

// Step is the result of advancing past a resolved question.
type Step struct {
	Next     *Question
	Complete bool
	Summary  RoundSummary
}

// Round is one play-through of a stage. It is owned by a single Session.
type Round struct {
	StageID     string
	Title       string
	Actors      []Actor
	Index       int
	Score       int
	Mistakes    int
	CoinsEarned int

	options   []Option
	resolved  bool
	hinted    bool
	outcome   AnswerOutcome
	finalized bool
	rng       *rand.Rand
}

// StartRound begins a round over a shuffled copy of the stage's actors.
func StartRound(stage Stage, unlocked bool, rng *rand.Rand) (*Round, error) {
	if !unlocked {
		return nil, ErrStageLocked
	}
	if len(stage.Actors) == 0 {
		return nil, ErrStageEmpty
	}

	actors := make([]Actor, len(stage.Actors))
	for i, a := range stage.Actors {
		a.Options = slices.Clone(a.Options)
		actors[i] = a
	}
	rng.Shuffle(len(actors), func(i, j int) { actors[i], actors[j] = actors[j], actors[i] })

	title := stage.Title
	if title == "" {
		title = stage.ID
	}
	r := &Round{
		StageID: stage.ID,
		Title:   title,
		Actors:  actors,
		rng:     rng,
	}
	r.present()
	return r, nil
}

// present builds the option set for the current actor: declared options,
// the actor's name exactly once, in shuffled order.
func (r *Round) present() {
	actor := r.Actors[r.Index]
	labels := make([]string, 0, len(actor.Options)+1)
	for _, o := range actor.Options {
		if o == actor.Name || slices.Contains(labels, o) {
			continue
		}
		labels = append(labels, o)
	}
	labels = append(labels, actor.Name)
	r.rng.Shuffle(len(labels), func(i, j int) { labels[i], labels[j] = labels[j], labels[i] })

	r.options = make([]Option, len(labels))
	for i, l := range labels {
		r.options[i] = Option{Label: l, name: l}
	}
	r.resolved = false
	r.hinted = false
	r.outcome = AnswerOutcome{}
}

// Done reports whether every actor has been played.
func (r *Round) Done() bool {
	return r.Index >= len(r.Actors)
}

// Current returns the question being played.
func (r *Round) Current() (Question, error) {
	if r.Done() {
		return Question{}, ErrRoundComplete
	}
	actor := r.Actors[r.Index]
	q := Question{
		Index:     r.Index,
		Total:     len(r.Actors),
		ActorName: actor.Name,
		Options:   slices.Clone(r.options),
		Resolved:  r.resolved,
	}
	if PresentableImage(actor.Image) {
		q.Image = actor.Image
	}
	return q, nil
}

// Submit judges the chosen label. A second submission for the same question
// returns the first outcome with Repeated set and changes nothing.
func (r *Round) Submit(label string) (AnswerOutcome, error) {
	if r.Done() {
		return AnswerOutcome{}, ErrRoundComplete
	}
	if r.resolved {
		out := r.outcome
		out.Repeated = true
		return out, nil
	}

	i := slices.IndexFunc(r.options, func(o Option) bool { return o.Label == label })
	if i < 0 || r.options[i].Eliminated {
		return AnswerOutcome{}, ErrUnknownOption
	}

	actor := r.Actors[r.Index]
	out := AnswerOutcome{
		Correct:     r.options[i].name == actor.Name,
		CorrectName: actor.Name,
	}
	if out.Correct {
		r.Score++
	} else {
		r.Mistakes++
	}
	r.resolved = true
	r.outcome = out
	return out, nil
}

// Advance moves past a resolved question.
func (r *Round) Advance() (Step, error) {
	if r.Done() {
		return Step{}, ErrRoundComplete
	}
	if !r.resolved {
		return Step{}, ErrQuestionPending
	}
	r.Index++
	if r.Done() {
		return Step{Complete: true, Summary: r.Summary()}, nil
	}
	r.present()
	q, _ := r.Current()
	return Step{Next: &q}, nil
}

func (r *Round) Summary() RoundSummary {
	return RoundSummary{
		StageID:  r.StageID,
		Score:    r.Score,
		Mistakes: r.Mistakes,
		Total:    len(r.Actors),
	}
}

// Eliminate disables up to n wrong, still-enabled options chosen at random.
func (r *Round) Eliminate(n int) ([]string, error) {
	if err := r.openQuestion(); err != nil {
		return nil, err
	}
	name := r.Actors[r.Index].Name
	var eligible []int
	for i, o := range r.options {
		if o.name != name && !o.Eliminated {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNothingToEliminate
	}
	r.rng.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })

	var removed []string
	for _, i := range eligible[:min(n, len(eligible))] {
		r.options[i].Eliminated = true
		removed = append(removed, r.options[i].Label)
	}
	return removed, nil
}

// Hint masks the correct option's label down to its first and last
// character. The option still answers as the actor's name.
func (r *Round) Hint() (string, error) {
	if err := r.openQuestion(); err != nil {
		return "", err
	}
	if r.hinted {
		return "", ErrPowerUpSpent
	}
	name := r.Actors[r.Index].Name
	i := slices.IndexFunc(r.options, func(o Option) bool { return o.name == name })
	label := hintLabel(name)
	r.options[i].Label = label
	r.options[i].Hint = true
	r.hinted = true
	return label, nil
}

// ForceCorrect resolves the current question as correct without an answer.
func (r *Round) ForceCorrect() (AnswerOutcome, error) {
	if err := r.openQuestion(); err != nil {
		return AnswerOutcome{}, err
	}
	r.Score++
	r.resolved = true
	r.outcome = AnswerOutcome{
		Correct:     true,
		CorrectName: r.Actors[r.Index].Name,
		Skipped:     true,
	}
	return r.outcome, nil
}

func (r *Round) openQuestion() error {
	if r.Done() {
		return ErrRoundComplete
	}
	if r.resolved {
		return ErrQuestionResolved
	}
	return nil
}

// markFinalized reports true only the first time it is called.
func (r *Round) markFinalized() bool {
	if r.finalized {
		return false
	}
	r.finalized = true
	return true
}

// Clone copies the round so a failed operation can be discarded. The random
// source is shared.
func (r *Round) Clone() *Round {
	cp := *r
	cp.Actors = slices.Clone(r.Actors)
	cp.options = slices.Clone(r.options)
	return &cp
}

// hintLabel shows the first and last letter of a name. Names too short to
// keep anything hidden that way only show their first letter.
func hintLabel(name string) string {
	runes := []rune(name)
	switch {
	case len(runes) == 0:
		return ""
	case len(runes) <= 2:
		return string(runes[0]) + " ···"
	}
	return string(runes[0]) + " ··· " + string(runes[len(runes)-1])
}
