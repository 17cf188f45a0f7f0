// Package logevidence converts raw container log text into structured
// evidence for root-cause correlation. Every function here is total over
// arbitrary input text and keeps no state between calls, so concurrent use
// needs no locking.
package logevidence

import (
	"regexp"
	"sort"
	"strings"

	"github.com/clusterscope/evidence-core/internal/models"
)

// errorPatterns are tried in priority order; a line is recorded against the
// first pattern that matches it and never against a later one.
var errorPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"error", regexp.MustCompile(`(?i)error:\s*(.*)`)},
	{"exception", regexp.MustCompile(`(?i)exception:\s*(.*)`)},
	{"fatal", regexp.MustCompile(`(?i)fatal:\s*(.*)`)},
	{"panic", regexp.MustCompile(`(?i)panic:\s*(.*)`)},
	{"failed", regexp.MustCompile(`(?i)failed:\s*(.*)`)},
	{"cannot", regexp.MustCompile(`(?i)cannot\s+(.*)`)},
}

// ExtractErrors scans text line by line and returns every line matching one
// of the error lead tokens, with 1-based line numbers and the captured
// remainder after the matched token.
func ExtractErrors(text string) []models.ErrorLine {
	var out []models.ErrorLine
	for i, line := range strings.Split(text, "\n") {
		for _, p := range errorPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			out = append(out, models.ErrorLine{
				Line:     i + 1,
				Text:     strings.TrimSpace(line),
				Pattern:  p.name,
				Captured: strings.TrimSpace(m[1]),
			})
			break
		}
	}
	return out
}

var (
	traceStartRe = regexp.MustCompile(`(?i)(traceback|stack trace)|\bat\s+\w+\.\w+`)
	traceContRe  = regexp.MustCompile(`^(\s+(at\b|File\b|line\b)|->)`)
)

// ExtractStackTraces finds stack trace blocks in a single forward scan. A
// block opens on a trace-start line and collects subsequent continuation
// lines (indented at/File/line frames, or -> markers); the first line that
// is neither closes it. Distinct blocks stay separate strings and are
// returned in order of appearance.
func ExtractStackTraces(text string) []string {
	var traces []string
	var current []string
	inside := false

	for _, line := range strings.Split(text, "\n") {
		if inside {
			if traceContRe.MatchString(line) {
				current = append(current, line)
				continue
			}
			traces = append(traces, strings.Join(current, "\n"))
			current = nil
			inside = false
		}
		if traceStartRe.MatchString(line) {
			inside = true
			current = []string{line}
		}
	}
	if inside {
		traces = append(traces, strings.Join(current, "\n"))
	}
	return traces
}

// FindRepeatedMessages groups lines by their exact trimmed content and
// returns every group reaching minOccurrences, ordered by the line number of
// the group's first occurrence. Blank lines never form a group.
func FindRepeatedMessages(text string, minOccurrences int) []models.RepeatedMessage {
	if minOccurrences < 1 {
		minOccurrences = 1
	}

	counts := make(map[string]int)
	firstLine := make(map[string]int)
	for i, line := range strings.Split(text, "\n") {
		msg := strings.TrimSpace(line)
		if msg == "" {
			continue
		}
		counts[msg]++
		if _, seen := firstLine[msg]; !seen {
			firstLine[msg] = i + 1
		}
	}

	var out []models.RepeatedMessage
	for msg, n := range counts {
		if n >= minOccurrences {
			out = append(out, models.RepeatedMessage{
				Message:   msg,
				Count:     n,
				FirstLine: firstLine[msg],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstLine < out[j].FirstLine })
	return out
}

// knownPatterns is the table of recurring failure signatures scanned for
// during analysis, most common cluster incidents first.
var knownPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"connection_refused", regexp.MustCompile(`(?i)connection refused`)},
	{"connection_timeout", regexp.MustCompile(`(?i)(connection.*timeout|timeout.*connection)`)},
	{"no_such_host", regexp.MustCompile(`(?i)(no such host|name resolution failed|could not resolve)`)},
	{"permission_denied", regexp.MustCompile(`(?i)permission denied`)},
	{"out_of_memory", regexp.MustCompile(`(?i)(out of memory|oom|cannot allocate memory)`)},
	{"file_not_found", regexp.MustCompile(`(?i)(no such file|file not found)`)},
	{"port_in_use", regexp.MustCompile(`(?i)address already in use`)},
	{"authentication_failed", regexp.MustCompile(`(?i)(auth\w* failed|invalid credentials)`)},
	{"disk_full", regexp.MustCompile(`(?i)(no space left|disk.*full)`)},
	{"certificate_error", regexp.MustCompile(`(?i)(certificate.*error|tls.*error|ssl.*error)`)},
}

// ScanKnownPatterns counts occurrences of known failure signatures, ordered
// by occurrence count descending (ties by pattern table order).
func ScanKnownPatterns(text string) []models.PatternFinding {
	var out []models.PatternFinding
	for _, p := range knownPatterns {
		if n := len(p.re.FindAllStringIndex(text, -1)); n > 0 {
			out = append(out, models.PatternFinding{Pattern: p.name, Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
