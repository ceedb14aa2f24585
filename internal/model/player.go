package model

import (
	"time"

	"github.com/google/uuid"
)

// Player is a registered game participant. There is no authentication
// surface; the directory only resolves existence.
type Player struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreatePlayerRequest is the payload for registering a new player.
type CreatePlayerRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=32,alphanum"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=64"`
}
