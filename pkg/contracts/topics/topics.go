package topics

const (
	// Bets
	BetEvents = "bet_events"

	// DLQs
	BetEventsDLQ = "bet_events_dlq"

	// Redis pub/sub
	PoolUpdates = "bet_pool_updates"
)
