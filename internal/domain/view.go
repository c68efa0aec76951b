package domain

// Totals aggregates votes per side.
type Totals struct {
	Alive int `json:"alive"`
	Dead  int `json:"dead"`
	Total int `json:"total"`
}

// Percentages are integer shares in [0,100]; they sum to 100 whenever Total > 0.
type Percentages struct {
	Alive int `json:"alive"`
	Dead  int `json:"dead"`
}

// View is everything the presentation layer needs to render one frame.
type View struct {
	Status      Status      `json:"status"`
	Outcome     string      `json:"outcome"`
	Countdown   string      `json:"countdown"`
	RoundInfo   string      `json:"round_info"`
	EndTimeMs   int64       `json:"end_time_ms"`
	CanVote     bool        `json:"can_vote"`
	Voted       bool        `json:"voted"`
	Totals      Totals      `json:"totals"`
	Percentages Percentages `json:"percentages"`
	Leaderboard []Vote      `json:"leaderboard"`
	Empty       bool        `json:"empty"`
}
