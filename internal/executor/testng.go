package executor

import (
	"regexp"
	"strconv"
	"strings"
)

// TestNG prints "Total tests run: 1, Passes: 1, Failures: 0, Skips: 0";
// releases before 7.0 omit the Passes column.
var summaryPattern = regexp.MustCompile(`Total tests run: (\d+), (?:Passes: (\d+), )?Failures: (\d+), Skips: (\d+)`)

// Summary is the suite totals reported by TestNG
type Summary struct {
	Run      int
	Passes   int
	Failures int
	Skips    int
}

// ParseSummary extracts the last suite summary from TestNG console output
func ParseSummary(output string) (Summary, bool) {
	matches := summaryPattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return Summary{}, false
	}
	m := matches[len(matches)-1]

	var s Summary
	s.Run, _ = strconv.Atoi(m[1])
	s.Failures, _ = strconv.Atoi(m[3])
	s.Skips, _ = strconv.Atoi(m[4])
	if m[2] != "" {
		s.Passes, _ = strconv.Atoi(m[2])
	} else {
		s.Passes = s.Run - s.Failures - s.Skips
	}
	return s, true
}

// FailureDetails collects the FAILED and SKIPPED blocks TestNG prints in
// verbose mode, each running until the next blank or separator line.
func FailureDetails(output string) string {
	var details []string
	capturing := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "FAILED:") || strings.HasPrefix(trimmed, "SKIPPED:"):
			capturing = true
		case trimmed == "" || strings.HasPrefix(trimmed, "=="):
			capturing = false
		}
		if capturing {
			details = append(details, line)
		}
	}
	return strings.Join(details, "\n")
}
