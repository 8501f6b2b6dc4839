package models

// Game is a board game the backend hosts leagues for.
type Game struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Group is a set of players that run leagues together.
type Group struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Members []GroupMember `json:"members,omitempty"`
}

// GroupMember is a player's membership in a group.
type GroupMember struct {
	PlayerID   int    `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// CreateGroupRequest is the body for creating a group.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// League is a season of matches inside a group.
type League struct {
	ID      int    `json:"id"`
	GroupID int    `json:"groupId"`
	Name    string `json:"name"`
	Active  bool   `json:"active"`
}

// Standing is one row of the server-computed league table.
type Standing struct {
	PlayerID    int    `json:"playerId"`
	PlayerName  string `json:"playerName"`
	Points      int    `json:"points"`
	Wins        int    `json:"wins"`
	GamesPlayed int    `json:"gamesPlayed"`
}
