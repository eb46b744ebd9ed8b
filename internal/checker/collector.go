package checker

import (
	tt "github.com/gnolang/plint/internal/types"
)

// Collector accumulates issues for one file, dropping duplicates by rule
// and primary range.
type Collector struct {
	issues []tt.Issue
	seen   map[tt.IssueKey]struct{}
}

func NewCollector() *Collector {
	return &Collector{seen: make(map[tt.IssueKey]struct{})}
}

// Add records issue unless an issue with the same identity was recorded.
func (c *Collector) Add(issue tt.Issue) {
	key := issue.Key()
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.issues = append(c.issues, issue)
}

// addFailure records an internal-error issue. Failures are kept apart from
// the (rule, range) deduplication: several rules may fail on one node.
func (c *Collector) addFailure(issue tt.Issue) {
	c.issues = append(c.issues, issue)
}

// Issues returns the collected issues in deterministic order.
func (c *Collector) Issues() []tt.Issue {
	out := make([]tt.Issue, len(c.issues))
	copy(out, c.issues)
	tt.SortIssues(out)
	return out
}
