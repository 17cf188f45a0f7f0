package logevidence

import "github.com/clusterscope/evidence-core/internal/models"

// DefaultMinRepeats is the repetition threshold used when the caller does
// not supply one.
const DefaultMinRepeats = 3

// Options tunes a single Analyze call.
type Options struct {
	// ExitCode, when set, attaches the exit-code classification.
	ExitCode *int
	// MinRepeats overrides the repeated-message threshold when positive.
	MinRepeats int
}

// Analyze runs all extractors over the text and aggregates the results.
// Identical input always produces structurally identical evidence.
func Analyze(text string, opts Options) models.LogEvidence {
	minRepeats := opts.MinRepeats
	if minRepeats <= 0 {
		minRepeats = DefaultMinRepeats
	}

	evidence := models.LogEvidence{
		ErrorLines:       ExtractErrors(text),
		StackTraces:      ExtractStackTraces(text),
		RepeatedMessages: FindRepeatedMessages(text, minRepeats),
		KnownPatterns:    ScanKnownPatterns(text),
	}
	if opts.ExitCode != nil {
		info := ClassifyExitCode(*opts.ExitCode)
		evidence.ExitCode = &info
	}
	return evidence
}
