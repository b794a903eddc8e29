package digest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamtools/boardnotify/internal/github"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "short title fits fine",
			max:      35,
			expected: "short title fits fine",
		},
		{
			name:     "long string cut with ellipsis",
			input:    strings.Repeat("a", 40),
			max:      35,
			expected: strings.Repeat("a", 34) + "…",
		},
		{
			name:     "exact length unchanged",
			input:    strings.Repeat("b", 35),
			max:      35,
			expected: strings.Repeat("b", 35),
		},
		{
			name:     "zero max disables truncation",
			input:    strings.Repeat("c", 100),
			max:      0,
			expected: strings.Repeat("c", 100),
		},
		{
			name:     "multibyte runes counted as characters",
			input:    strings.Repeat("ж", 40),
			max:      35,
			expected: strings.Repeat("ж", 34) + "…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, tt.max))
		})
	}
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp;c", escapeHTML("a <b> &c"))

	// Escaping text free of markup characters is a no-op.
	assert.Equal(t, "plain text", escapeHTML("plain text"))
}

func TestRepoBadge(t *testing.T) {
	assert.Equal(t,
		`<a href="https://github.com/acme/widgets">widgets</a>`,
		repoBadge("https://github.com/acme/widgets/pull/42"),
	)
	assert.Equal(t, "", repoBadge("not a url"))
	assert.Equal(t, "", repoBadge("https://github.com"))
}

func TestFormatPullRequest(t *testing.T) {
	pr := &github.PullRequest{
		Title:  "Fix <critical> bug & cleanup",
		URL:    "https://github.com/acme/widgets/pull/42",
		Author: "alice",
		Reviews: github.ReviewData{
			LatestOpinionatedReviews: []github.Review{
				{Reviewer: "bob", State: github.ReviewApproved},
			},
		},
	}

	line := FormatPullRequest(pr)

	assert.Equal(t,
		`<a href="https://github.com/acme/widgets">widgets</a>: `+
			`<a href="https://github.com/acme/widgets/pull/42">Fix &lt;critical&gt; bug &amp; cleanup</a> ✅ @alice`,
		line,
	)
}

func TestFormatPullRequestTruncatesEscapedTitle(t *testing.T) {
	pr := &github.PullRequest{
		Title:  strings.Repeat("x", 40),
		URL:    "https://github.com/acme/widgets/pull/1",
		Author: "alice",
	}

	line := FormatPullRequest(pr)

	assert.Contains(t, line, strings.Repeat("x", 34)+"…")
	assert.NotContains(t, line, strings.Repeat("x", 35))
}

func TestFormatIssue(t *testing.T) {
	tests := []struct {
		name     string
		issue    *github.Issue
		expected string
	}{
		{
			name: "with assignees in order",
			issue: &github.Issue{
				Title:     "Broken layout",
				URL:       "https://github.com/acme/widgets/issues/7",
				Assignees: []string{"alice", "bob"},
			},
			expected: `<a href="https://github.com/acme/widgets">widgets</a>: ` +
				`<a href="https://github.com/acme/widgets/issues/7">Broken layout</a> @alice @bob`,
		},
		{
			name: "no assignees",
			issue: &github.Issue{
				Title: "Broken layout",
				URL:   "https://github.com/acme/widgets/issues/7",
			},
			expected: `<a href="https://github.com/acme/widgets">widgets</a>: ` +
				`<a href="https://github.com/acme/widgets/issues/7">Broken layout</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatIssue(tt.issue))
		})
	}
}

func TestFormatItem(t *testing.T) {
	assert.Equal(t, "", formatItem(nil))
	assert.Equal(t, "", formatItem(&github.Item{}))

	issue := &github.Issue{Title: "t", URL: "https://github.com/a/b/issues/1"}
	assert.Equal(t, FormatIssue(issue), formatItem(&github.Item{Issue: issue}))
}
