package topics

const (
	// Bets
	BetChanges = "bet_changes"

	// DLQs
	BetChangesDLQ = "bet_changes_dlq"
)
