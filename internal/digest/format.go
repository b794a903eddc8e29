package digest

import (
	"fmt"
	"strings"

	"github.com/teamtools/boardnotify/internal/github"
)

// maxTitleLen is the display length titles are truncated to.
const maxTitleLen = 35

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeHTML escapes the characters the chat markup is sensitive to.
// Applied exactly once per string; output free of raw <, > and &.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// truncate shortens s to at most max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// repoBadge renders a link to the repository root labeled with the repo name,
// derived from the item URL's owner/repo segments.
func repoBadge(itemURL string) string {
	scheme, rest, ok := strings.Cut(itemURL, "://")
	if !ok {
		return ""
	}
	segments := strings.Split(rest, "/")
	if len(segments) < 3 {
		return ""
	}
	host, owner, repo := segments[0], segments[1], segments[2]
	return fmt.Sprintf(`<a href="%s://%s/%s/%s">%s</a>`, scheme, host, owner, repo, repo)
}

// FormatPullRequest renders a pull request as a one-line digest entry:
// repo badge, linked truncated title, review glyphs, author mention.
func FormatPullRequest(pr *github.PullRequest) string {
	title := truncate(escapeHTML(pr.Title), maxTitleLen)
	status := ReviewStatus(pr.Reviews)
	return fmt.Sprintf(`%s: <a href="%s">%s</a> %s @%s`, repoBadge(pr.URL), pr.URL, title, status, pr.Author)
}

// FormatIssue renders an issue as a one-line digest entry: repo badge,
// linked truncated title, one mention per assignee in original order.
func FormatIssue(issue *github.Issue) string {
	title := truncate(escapeHTML(issue.Title), maxTitleLen)

	var b strings.Builder
	fmt.Fprintf(&b, `%s: <a href="%s">%s</a>`, repoBadge(issue.URL), issue.URL, title)
	for _, assignee := range issue.Assignees {
		b.WriteString(" @")
		b.WriteString(assignee)
	}
	return b.String()
}

// formatItem renders either side of the item union. Unrecognized content
// renders to the empty string.
func formatItem(item *github.Item) string {
	switch {
	case item == nil:
		return ""
	case item.PullRequest != nil:
		return FormatPullRequest(item.PullRequest)
	case item.Issue != nil:
		return FormatIssue(item.Issue)
	default:
		return ""
	}
}
