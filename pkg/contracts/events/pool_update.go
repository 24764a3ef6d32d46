package events

import "time"

// PoolUpdate é publicado no canal Redis "bet_pool_updates" e repassado aos
// clientes WebSocket inscritos na aposta.
type PoolUpdate struct {
	BetID            string    `json:"betId"`
	Status           string    `json:"status"`
	YesPool          string    `json:"yesPool"`
	NoPool           string    `json:"noPool"`
	TotalPool        string    `json:"totalPool"`
	YesPercentage    float64   `json:"yesPercentage"`
	NoPercentage     float64   `json:"noPercentage"`
	ParticipantCount int       `json:"participantCount"`
	Outcome          string    `json:"outcome,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
