package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Story is a user-authored annotation thread over one blaseball game.
// StoryID is system-generated and immutable; UserID establishes
// non-transferable ownership, set once at creation.
type Story struct {
	StoryID string    `json:"story_id"`
	GameID  uuid.UUID `json:"game_id"`
	UserID  string    `json:"user_id"`
	Title   string    `json:"title"`
}

// StoryEvent is one annotation entry within a story, keyed by the
// externally supplied blaseball event id. The pair
// (StoryID, BlaseballEventID) is the natural key.
type StoryEvent struct {
	StoryID          string          `db:"story_id" json:"-"`
	BlaseballEventID uuid.UUID       `db:"blaseball_event_id" json:"blaseball_event_id"`
	Description      string          `db:"description" json:"description"`
	Visual           json.RawMessage `db:"visual" json:"visual"`
	// Ordinal is the position within the submitted batch; it keeps
	// reads in the order the author arranged the timeline.
	Ordinal int `db:"ordinal" json:"-"`
}
