package models

import "github.com/google/uuid"

// HandRecord is one player's hand at settlement.
type HandRecord struct {
	PlayerID int    `json:"player_id"`
	Username string `json:"username"`
	Cards    []Card `json:"cards"`
	Value    int    `json:"value"`
}

// RoundRecord holds what happened in one settled betting round.
type RoundRecord struct {
	GameID     uuid.UUID    `json:"game_id"`
	RoundIndex int          `json:"round_index"`
	BettorID   int          `json:"bettor_id"`
	Wager      int          `json:"wager"`
	Hands      []HandRecord `json:"hands"`
	Winners    []int        `json:"winners"`
	Deltas     map[int]int  `json:"deltas"`
	Timestamp  int64        `json:"timestamp"`
}
