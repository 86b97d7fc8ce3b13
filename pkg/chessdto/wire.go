// Package chessdto holds the JSON shapes exchanged with the chess server.
package chessdto

import "encoding/json"

// StateResponse is returned by GET /chess/{id}/state. Result is nil while
// the game is ongoing.
type StateResponse struct {
	Board       [][]json.RawMessage `json:"board"`
	CurrentTurn string              `json:"current_turn"`
	Result      *string             `json:"result"`
}

// Player is a side's identity as reported by the server.
type Player struct {
	Login string `json:"login"`
	Elo   int    `json:"elo"`
}

// WhitePlayerResponse is returned by GET /chess/{id}/white-player.
type WhitePlayerResponse struct {
	WhitePlayer *Player `json:"white_player"`
}

// BlackPlayerResponse is returned by GET /chess/{id}/black-player.
type BlackPlayerResponse struct {
	BlackPlayer *Player `json:"black_player"`
}

// MoveRequest is the body of POST /chess/{id}/move.
type MoveRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MoveResponse is the body returned after a move. Result is nil while
// the game is ongoing, otherwise "white", "black" or "draw".
type MoveResponse struct {
	Board       [][]json.RawMessage `json:"board"`
	CurrentTurn string              `json:"current_turn"`
	Result      *string             `json:"result"`
}
