package bot

import "time"

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of users listed by /leaderboard
	LeaderboardSize int
	// Long polling timeout in seconds
	UpdateTimeout int
	// Upper bound for grading a single message
	GradeTimeout time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		LeaderboardSize: 10,
		UpdateTimeout:   60,
		GradeTimeout:    15 * time.Second,
	}
}
