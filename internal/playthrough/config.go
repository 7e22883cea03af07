package playthrough

import "time"

// Config holds the settings of a play-through run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Name     string        // Answer to the name step
	Partner  string        // Answer to the partner step
	Score    int           // Affection score to submit
	Declines int           // Times to dodge the "no" button before accepting
	Sessions int           // Sessions to play
	Workers  int           // Sessions played concurrently
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every snapshot
}

// Snapshot is the subset of the session state the runner checks.
type Snapshot struct {
	SessionID      string `json:"session_id"`
	Step           int    `json:"step"`
	StepName       string `json:"step_name"`
	Name           string `json:"name"`
	Partner        string `json:"partner"`
	ErrorMessage   string `json:"error_message"`
	AffectionScore int    `json:"affection_score"`
	DodgeCount     int    `json:"dodge_count"`
	Revealed       bool   `json:"revealed"`
	Progress       int    `json:"progress"`
	ScoreMessage   string `json:"score_message"`
	Confetti       bool   `json:"confetti"`
}

// Decline is the response of a dodge.
type Decline struct {
	Duplicate bool     `json:"duplicate"`
	State     Snapshot `json:"state"`
}

// Share is the shareable summary.
type Share struct {
	Text string `json:"text"`
}

// ErrorBody is the body of a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stats holds run statistics.
type Stats struct {
	Sessions   int
	Completed  int
	Failed     int
	Declines   int
	Duplicates int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
