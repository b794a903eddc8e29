package digest

import (
	"context"
	"regexp"
	"strconv"

	"github.com/teamtools/boardnotify/internal/github"
)

// itemURLRe matches a tracker issue or pull request URL embedded in text.
// Owner and repo segments exclude slashes and whitespace.
var itemURLRe = regexp.MustCompile(`https?://[^/\s]+/([^/\s]+)/([^/\s]+)/(issues|pull)/(\d+)`)

// ItemKind distinguishes the two linkable item types.
type ItemKind int

const (
	KindIssue ItemKind = iota
	KindPullRequest
)

// ItemRef holds the parsed components of a tracker item URL.
type ItemRef struct {
	Owner  string
	Repo   string
	Kind   ItemKind
	Number int
}

// DetectLink scans text for the first tracker item URL and parses it.
// Subsequent matches in the same text are ignored. Returns nil when no
// parseable link is present.
func DetectLink(text string) *ItemRef {
	matches := itemURLRe.FindStringSubmatch(text)
	if matches == nil {
		return nil
	}
	number, err := strconv.Atoi(matches[4])
	if err != nil {
		return nil
	}
	kind := KindIssue
	if matches[3] == "pull" {
		kind = KindPullRequest
	}
	return &ItemRef{
		Owner:  matches[1],
		Repo:   matches[2],
		Kind:   kind,
		Number: number,
	}
}

// ResolveAndSubstitute fetches full detail for ref and replaces the first
// occurrence of the item URL in text with the rendered one-line summary.
// When the lookup finds nothing (item deleted or inaccessible) the original
// text is returned unchanged with substituted=false; only transport-level
// failures surface as errors.
func ResolveAndSubstitute(ctx context.Context, gh github.Client, text string, ref *ItemRef) (result string, substituted bool, err error) {
	var rendered string

	switch ref.Kind {
	case KindPullRequest:
		pr, err := gh.PullRequest(ctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			return text, false, err
		}
		if pr == nil {
			return text, false, nil
		}
		rendered = FormatPullRequest(pr)
	case KindIssue:
		issue, err := gh.Issue(ctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			return text, false, err
		}
		if issue == nil {
			return text, false, nil
		}
		rendered = FormatIssue(issue)
	default:
		return text, false, nil
	}

	loc := itemURLRe.FindStringIndex(text)
	if loc == nil {
		return text, false, nil
	}
	return text[:loc[0]] + rendered + text[loc[1]:], true, nil
}
