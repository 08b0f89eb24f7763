package web

type SessionSummary struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Round     int    `json:"round"`
	MaxRounds int    `json:"maxRounds"`
	Players   int    `json:"players"`
}

type HomeSettings struct {
	DrawingSeconds     int64
	PreparationSeconds int64
	MaxRounds          int
}
