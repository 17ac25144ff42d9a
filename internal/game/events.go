package game

// EventType names a state change pushed to the player's other views.
type EventType string

const (
	EventAnswerResolved EventType = "answer_resolved"
	EventRoundComplete  EventType = "round_complete"
	EventCoinsChanged   EventType = "coins_changed"
	EventBadgeEarned    EventType = "badge_earned"
	EventLevelUp        EventType = "level_up"
	EventStageUnlocked  EventType = "stage_unlocked"
)

// Event is published after a mutation has been saved.
type Event struct {
	Type    EventType `json:"type"`
	StageID string    `json:"stageId,omitempty"`
	Correct bool      `json:"correct,omitempty"`
	Coins   int       `json:"coins"`
	Level   int       `json:"level,omitempty"`
	Badge   Badge     `json:"badge,omitempty"`
	Stars   int       `json:"stars,omitempty"`
}

// Publisher fans events out to a player's listeners.
type Publisher interface {
	Publish(playerID string, ev Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, Event) {}
