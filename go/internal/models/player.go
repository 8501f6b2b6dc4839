package models

// Player is a league participant.
type Player struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreatePlayerRequest is the body for registering a player.
type CreatePlayerRequest struct {
	Name string `json:"name"`
}
