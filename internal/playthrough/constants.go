package playthrough

import "time"

// Defaults for the run command.
const (
	DefaultBaseURL  = "http://localhost:9080"
	DefaultName     = "pavita"
	DefaultPartner  = "heru"
	DefaultScore    = 100
	DefaultDeclines = 3
	DefaultTimeout  = 10 * time.Second
)

// Responses with a status in [StatusOK, StatusMultipleChoices) succeed.
const (
	StatusOK              = 200
	StatusMultipleChoices = 300
)

// Quiz steps as they appear on the wire.
const (
	stepReveal = 5
	maxScore   = 100
	minScore   = 1
)
