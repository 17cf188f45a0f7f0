package models

// ErrorLine is one matched error line from a log scan.
type ErrorLine struct {
	Line     int    `json:"line"`
	Text     string `json:"text"`
	Pattern  string `json:"pattern"`
	Captured string `json:"captured"`
}

// ExitCodeCategory buckets container exit codes for correlation.
type ExitCodeCategory string

const (
	ExitSuccess          ExitCodeCategory = "success"
	ExitApplicationError ExitCodeCategory = "application_error"
	ExitOOMKilled        ExitCodeCategory = "oom_killed"
	ExitTerminated       ExitCodeCategory = "terminated"
	ExitCommandError     ExitCodeCategory = "command_error"
	ExitUnknown          ExitCodeCategory = "unknown"
)

// ExitCodeInfo is the classification of a container exit code.
type ExitCodeInfo struct {
	Code           int              `json:"code"`
	Description    string           `json:"description"`
	Category       ExitCodeCategory `json:"category"`
	Recommendation string           `json:"recommendation,omitempty"`
}

// RepeatedMessage is a cluster of identical log lines.
type RepeatedMessage struct {
	Message   string `json:"message"`
	Count     int    `json:"count"`
	FirstLine int    `json:"first_line"`
}

// PatternFinding is a hit against the known-issue pattern table.
type PatternFinding struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// LogEvidence is the structured result of one log analysis. It is a value
// produced fresh per Analyze call and never mutated afterward.
type LogEvidence struct {
	ErrorLines       []ErrorLine       `json:"error_lines"`
	StackTraces      []string          `json:"stack_traces"`
	ExitCode         *ExitCodeInfo     `json:"exit_code,omitempty"`
	RepeatedMessages []RepeatedMessage `json:"repeated_messages"`
	KnownPatterns    []PatternFinding  `json:"known_patterns,omitempty"`
}
