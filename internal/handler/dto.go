package handler

import (
	"encoding/json"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
)

// SubmitRequest is the body of POST /submit. A payload that already
// carries story.story_id is an edit; one without it is a creation. The
// distinction is made once, up front, in the handler.
type SubmitRequest struct {
	Story  StoryPayload     `json:"story" validate:"required"`
	Events []EventPayload   `json:"events" validate:"dive"`
	User   *UserCredentials `json:"user" validate:"omitempty"`
}

// StoryPayload описывает историю в запросе.
type StoryPayload struct {
	StoryID string `json:"story_id"`
	GameID  string `json:"game_id" validate:"required_without=StoryID,omitempty,uuid"`
	Title   string `json:"title"`
}

// EventPayload описывает одно событие в запросе.
type EventPayload struct {
	BlaseballEventID string          `json:"blaseball_event_id" validate:"required,uuid"`
	Description      string          `json:"description"`
	Visual           json.RawMessage `json:"visual"`
}

// UserCredentials is the optional id/token pair a caller submits under.
type UserCredentials struct {
	UserID    string `json:"user_id" validate:"required"`
	UserToken string `json:"user_token" validate:"required"`
}

// SubmitResponse is the success body of POST /submit. UserID/UserToken
// are present only when a fresh identity was minted for an anonymous
// submission; StoryID only on creation.
type SubmitResponse struct {
	Status    int    `json:"status"`
	UserID    string `json:"user_id,omitempty"`
	UserToken string `json:"user_token,omitempty"`
	StoryID   string `json:"story_id,omitempty"`
}

// StoryResponse is the success body of GET /story. It never carries a
// user token.
type StoryResponse struct {
	Status int                 `json:"status"`
	Story  models.Story        `json:"story"`
	Events []models.StoryEvent `json:"events"`
}

// ErrorResponse is the error body shared by all endpoints.
type ErrorResponse struct {
	Status int    `json:"status"`
	Reason string `json:"reason"`
}
