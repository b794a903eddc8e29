package github

import (
	"encoding/json"
	"fmt"
)

// ReviewState is a pull request review verdict as reported by the API.
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewPending          ReviewState = "PENDING"
)

// Review is one reviewer's latest verdict on a pull request.
type Review struct {
	Reviewer string
	State    ReviewState
}

// ReviewData carries the three overlapping review sources returned for a
// pull request. Absent sources are empty slices, never an error.
type ReviewData struct {
	// LatestReviews is every reviewer's most recent review, oldest first.
	LatestReviews []Review

	// LatestOpinionatedReviews is restricted to approve/changes-requested
	// verdicts and is authoritative over a later plain comment.
	LatestOpinionatedReviews []Review

	// ReviewRequests lists reviewers asked for a review who have not yet
	// submitted one.
	ReviewRequests []string
}

// PullRequest is a linked pull request card content or lookup result.
type PullRequest struct {
	Title     string
	URL       string
	Author    string
	Assignees []string
	Reviews   ReviewData
}

// Issue is a linked issue card content or lookup result.
type Issue struct {
	Title     string
	URL       string
	Assignees []string
}

// Item is the tagged union of linkable tracker items. Exactly one field is
// non-nil. The __typename discriminator is consulted once, while parsing the
// API response; downstream code matches on the union.
type Item struct {
	PullRequest *PullRequest
	Issue       *Issue
}

// Note is the free-text shape of a board card.
type Note struct {
	Text    string
	Creator string
}

// Card is one entry in a board column: either a free-text note or a linked
// item. A card whose raw record fits neither shape has both fields nil and
// renders to nothing.
type Card struct {
	Note    *Note
	Content *Item
}

// --- wire types ---

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type login struct {
	Login string `json:"login"`
}

type loginNodes struct {
	Nodes []login `json:"nodes"`
}

type rawReview struct {
	Author *login `json:"author"`
	State  string `json:"state"`
}

type reviewConnection struct {
	Nodes []rawReview `json:"nodes"`
}

type reviewRequestConnection struct {
	Nodes []struct {
		RequestedReviewer *login `json:"requestedReviewer"`
	} `json:"nodes"`
}

type rawContent struct {
	Typename                 string                   `json:"__typename"`
	Title                    string                   `json:"title"`
	URL                      string                   `json:"url"`
	Author                   *login                   `json:"author"`
	Assignees                *loginNodes              `json:"assignees"`
	ReviewRequests           *reviewRequestConnection `json:"reviewRequests"`
	LatestOpinionatedReviews *reviewConnection        `json:"latestOpinionatedReviews"`
	LatestReviews            *reviewConnection        `json:"latestReviews"`
}

type rawCard struct {
	Note    string      `json:"note"`
	State   string      `json:"state"`
	Creator *login      `json:"creator"`
	Content *rawContent `json:"content"`
}

type cardsEnvelope struct {
	Node *struct {
		Name  string `json:"name"`
		Cards *struct {
			Nodes []rawCard `json:"nodes"`
		} `json:"cards"`
	} `json:"node"`
}

type itemEnvelope struct {
	Repository *struct {
		Issue       *rawContent `json:"issue"`
		PullRequest *rawContent `json:"pullRequest"`
	} `json:"repository"`
}

type membersEnvelope struct {
	Organization *struct {
		MembersWithRole *loginNodes `json:"membersWithRole"`
	} `json:"organization"`
}

type columnsEnvelope struct {
	Organization *struct {
		Project *struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Columns *struct {
				Edges []struct {
					Node Column `json:"node"`
				} `json:"edges"`
			} `json:"columns"`
		} `json:"project"`
	} `json:"organization"`
}

// Column identifies one project-board column.
type Column struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// --- parsing ---

const (
	cardStateNoteOnly    = "NOTE_ONLY"
	cardStateContentOnly = "CONTENT_ONLY"

	typenamePullRequest = "PullRequest"
	typenameIssue       = "Issue"
)

// parseCard classifies a raw card record into the Card union. Classification
// is total: records missing expected fields yield an empty Card.
func parseCard(raw rawCard) Card {
	switch raw.State {
	case cardStateNoteOnly:
		if raw.Note == "" || raw.Creator == nil {
			return Card{}
		}
		return Card{Note: &Note{Text: raw.Note, Creator: raw.Creator.Login}}
	case cardStateContentOnly:
		if raw.Content == nil {
			return Card{}
		}
		return Card{Content: parseContent(*raw.Content)}
	default:
		return Card{}
	}
}

// parseContent resolves the __typename discriminator into the Item union.
// Unrecognized content types yield nil.
func parseContent(raw rawContent) *Item {
	switch raw.Typename {
	case typenamePullRequest:
		return &Item{PullRequest: parsePullRequest(raw)}
	case typenameIssue:
		return &Item{Issue: parseIssue(raw)}
	default:
		return nil
	}
}

func parsePullRequest(raw rawContent) *PullRequest {
	pr := &PullRequest{
		Title:     raw.Title,
		URL:       raw.URL,
		Assignees: parseLogins(raw.Assignees),
		Reviews: ReviewData{
			LatestReviews:            parseReviews(raw.LatestReviews),
			LatestOpinionatedReviews: parseReviews(raw.LatestOpinionatedReviews),
			ReviewRequests:           parseReviewRequests(raw.ReviewRequests),
		},
	}
	if raw.Author != nil {
		pr.Author = raw.Author.Login
	}
	return pr
}

func parseIssue(raw rawContent) *Issue {
	return &Issue{
		Title:     raw.Title,
		URL:       raw.URL,
		Assignees: parseLogins(raw.Assignees),
	}
}

func parseLogins(nodes *loginNodes) []string {
	if nodes == nil {
		return nil
	}
	out := make([]string, 0, len(nodes.Nodes))
	for _, n := range nodes.Nodes {
		if n.Login != "" {
			out = append(out, n.Login)
		}
	}
	return out
}

func parseReviews(conn *reviewConnection) []Review {
	if conn == nil {
		return nil
	}
	out := make([]Review, 0, len(conn.Nodes))
	for _, n := range conn.Nodes {
		if n.Author == nil || n.Author.Login == "" {
			continue
		}
		out = append(out, Review{Reviewer: n.Author.Login, State: ReviewState(n.State)})
	}
	return out
}

func parseReviewRequests(conn *reviewRequestConnection) []string {
	if conn == nil {
		return nil
	}
	out := make([]string, 0, len(conn.Nodes))
	for _, n := range conn.Nodes {
		if n.RequestedReviewer != nil && n.RequestedReviewer.Login != "" {
			out = append(out, n.RequestedReviewer.Login)
		}
	}
	return out
}

// APIError represents an HTTP-level error response from the GitHub API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github API error (HTTP %d): %s", e.StatusCode, e.Body)
}
