package gitsrc

import (
	"strconv"
	"strings"
	"time"

	"github.com/forgeworks/forgestat/schema"
)

// ParseLog turns git log output produced with logFormat plus --numstat into
// raw commit records. Each commit header opens a record; the numstat lines
// that follow accumulate into it until the next header.
func ParseLog(out []byte) []schema.RawCommit {
	lines := strings.Split(string(out), "\n")
	var commits []schema.RawCommit
	var current *schema.RawCommit

	flush := func() {
		if current == nil {
			return
		}
		current.Total = current.Additions + current.Deletions
		commits = append(commits, *current)
		current = nil
	}

	for _, l := range lines {
		l = strings.Trim(l, " \t\r\n'")

		if strings.HasPrefix(l, "--") {
			flush()
			commit := parseCommitHeader(l)
			current = &commit
			continue
		}
		if l == "" || current == nil {
			continue
		}

		add, del, ok := parseStatsLine(l)
		if !ok {
			continue
		}
		current.Additions += add
		current.Deletions += del
	}
	flush()

	return commits
}

// parseCommitHeader extracts author name, email and instant from a header
// line. A date that does not parse leaves the timestamp zero; downstream
// aggregation drops such commits silently.
func parseCommitHeader(line string) schema.RawCommit {
	parts := strings.SplitN(strings.TrimPrefix(line, "--"), "|", 3) // name|email|date
	if len(parts) != 3 {
		return schema.RawCommit{}
	}
	commit := schema.RawCommit{Login: parts[0], Email: parts[1]}
	if date, err := time.Parse(time.RFC3339, parts[2]); err == nil {
		commit.Timestamp = date.UTC()
	}
	return commit
}

// parseStatsLine parses one numstat line into its addition and deletion
// counts. Binary file markers and non-numeric fields count as zero.
func parseStatsLine(line string) (int, int, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return 0, 0, false
	}
	return parseChurnValue(parts[0]), parseChurnValue(parts[1]), true
}

// parseChurnValue converts a churn string to int, handling "-" as 0.
func parseChurnValue(s string) int {
	if s == "-" {
		return 0
	}
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}
