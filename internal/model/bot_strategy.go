package model

// Bot strategy constants
const (
	BotStrategyRandom = "random"
	BotStrategyHunt   = "hunt"
)

// BotDisplayName is the seat name shown for the solo-play opponent
const BotDisplayName = "Bot"

// BotStrategyDisplayName returns a human-readable label for a strategy
func BotStrategyDisplayName(strategy string) string {
	switch strategy {
	case BotStrategyRandom:
		return "Random"
	case BotStrategyHunt:
		return "Hunter"
	default:
		return strategy
	}
}

// ValidBotStrategies returns all valid bot strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyRandom, BotStrategyHunt}
}
