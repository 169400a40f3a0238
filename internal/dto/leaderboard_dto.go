package dto

import "time"

// LeaderboardEntry is one ranked row of the public leaderboard.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Total  int    `json:"total"`
}

// LeaderboardResponse is the aggregated leaderboard view.
type LeaderboardResponse struct {
	Entries     []LeaderboardEntry `json:"entries"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// UserPointsResponse reports a user's derived point totals.
type UserPointsResponse struct {
	UserID     uint           `json:"user_id"`
	Total      int            `json:"total"`
	ByActivity map[string]int `json:"by_activity"`
	Badges     []string       `json:"badges"`
}
