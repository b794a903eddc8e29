package digest

import (
	"strings"

	"github.com/teamtools/boardnotify/internal/github"
)

// Review status glyphs. One glyph per reviewer, concatenated without
// separators.
const (
	glyphApproved         = "✅"
	glyphChangesRequested = "❌"
	glyphCommented        = "💬"
	glyphPending          = "🔸"
)

// ReviewStatus merges the three review sources into one compact glyph string,
// one glyph per reviewer in first-seen order. Sources are applied with
// increasing authority, later sources overwriting a reviewer's earlier glyph:
//
//  1. latest reviews, most recent first (the API returns them oldest-last);
//  2. latest opinionated reviews, which outrank a later plain comment;
//  3. pending review requests, which outrank everything.
func ReviewStatus(reviews github.ReviewData) string {
	var order []string
	glyphs := make(map[string]string)

	apply := func(reviewer, glyph string) {
		if reviewer == "" {
			return
		}
		if _, seen := glyphs[reviewer]; !seen {
			order = append(order, reviewer)
		}
		glyphs[reviewer] = glyph
	}

	latest := reviews.LatestReviews
	for i := len(latest) - 1; i >= 0; i-- {
		apply(latest[i].Reviewer, stateGlyph(latest[i].State))
	}
	for _, r := range reviews.LatestOpinionatedReviews {
		apply(r.Reviewer, stateGlyph(r.State))
	}
	for _, reviewer := range reviews.ReviewRequests {
		apply(reviewer, glyphPending)
	}

	var b strings.Builder
	for _, reviewer := range order {
		b.WriteString(glyphs[reviewer])
	}
	return b.String()
}

func stateGlyph(state github.ReviewState) string {
	switch state {
	case github.ReviewApproved:
		return glyphApproved
	case github.ReviewChangesRequested:
		return glyphChangesRequested
	case github.ReviewCommented:
		return glyphCommented
	default:
		return glyphPending
	}
}
