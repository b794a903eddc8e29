package github

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/pkg/errors"
)

const (
	// DefaultGraphQLURL is the GitHub GraphQL endpoint.
	DefaultGraphQLURL = "https://api.github.com/graphql"

	// DefaultTimeout bounds a single API round trip.
	DefaultTimeout = 30 * time.Second

	maxRetries     = 3
	retryBaseDelay = 1 * time.Second
)

// Client is the interface for the board, item, and directory lookups the
// digest pipeline issues against GitHub.
type Client interface {
	// ColumnCards returns the cards of a project column, in board order.
	ColumnCards(ctx context.Context, columnID string) ([]Card, error)

	// Issue looks up one issue. Returns nil, nil when the issue does not
	// exist or is inaccessible.
	Issue(ctx context.Context, owner, name string, number int) (*Issue, error)

	// PullRequest looks up one pull request with its review data.
	// Returns nil, nil when the pull request does not exist or is
	// inaccessible.
	PullRequest(ctx context.Context, owner, name string, number int) (*PullRequest, error)

	// OrganizationMembers returns the logins of the organization's members.
	OrganizationMembers(ctx context.Context, org string) ([]string, error)

	// ProjectColumns lists the columns of an organization project, for
	// operator discovery of column node IDs.
	ProjectColumns(ctx context.Context, org string, number int) ([]Column, error)
}

// clientImpl implements Client against the GraphQL API, with a go-github
// REST fallback for the member directory.
type clientImpl struct {
	graphqlURL string
	token      string
	httpClient *http.Client
	rest       *gogithub.Client
	logger     *slog.Logger
}

// NewClient creates a GitHub client authenticated with the given token.
func NewClient(token string, opts ...ClientOption) Client {
	c := &clientImpl{
		graphqlURL: DefaultGraphQLURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		rest:       gogithub.NewClient(nil).WithAuthToken(token),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption is a functional option for configuring the client.
type ClientOption func(*clientImpl)

// WithGraphQLURL overrides the GraphQL endpoint (useful for testing).
func WithGraphQLURL(url string) ClientOption {
	return func(c *clientImpl) {
		c.graphqlURL = url
	}
}

// WithRESTClient overrides the go-github client used for REST fallbacks.
func WithRESTClient(rest *gogithub.Client) ClientOption {
	return func(c *clientImpl) {
		c.rest = rest
	}
}

// WithLogger sets a logger for request debugging.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientImpl) {
		c.logger = logger
	}
}

func (c *clientImpl) logDebug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// query POSTs a GraphQL document and decodes the data envelope into out.
// Transient failures (429, 5xx) are retried with exponential backoff.
func (c *clientImpl) query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return errors.Wrap(err, "marshal GraphQL request")
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			c.logDebug("github retry", "attempt", attempt, "delay", delay.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
		if err != nil {
			return errors.Wrap(err, "create GraphQL request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = errors.Wrap(err, "request failed")
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = errors.Wrap(err, "read response body")
			continue
		}

		c.logDebug("github response", "status", resp.StatusCode, "body_length", len(respBody))

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		}

		var envelope graphQLResponse
		if err := json.Unmarshal(respBody, &envelope); err != nil {
			return errors.Wrap(err, "decode GraphQL response")
		}

		// GraphQL reports missing objects as null fields alongside errors;
		// only treat it as a failure when no data came back at all.
		if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
			if len(envelope.Errors) > 0 {
				return errors.Errorf("GraphQL error: %s", envelope.Errors[0].Message)
			}
			return errors.New("GraphQL response contained no data")
		}

		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrap(err, "decode GraphQL data")
		}
		return nil
	}

	return errors.Wrapf(lastErr, "request failed after %d retries", maxRetries)
}

func (c *clientImpl) ColumnCards(ctx context.Context, columnID string) ([]Card, error) {
	var envelope cardsEnvelope
	if err := c.query(ctx, cardsQuery, map[string]any{"id": columnID}, &envelope); err != nil {
		return nil, errors.Wrap(err, "query column cards")
	}
	if envelope.Node == nil || envelope.Node.Cards == nil {
		return nil, nil
	}
	cards := make([]Card, 0, len(envelope.Node.Cards.Nodes))
	for _, raw := range envelope.Node.Cards.Nodes {
		cards = append(cards, parseCard(raw))
	}
	return cards, nil
}

func (c *clientImpl) Issue(ctx context.Context, owner, name string, number int) (*Issue, error) {
	variables := map[string]any{"owner": owner, "name": name, "number": number}
	var envelope itemEnvelope
	if err := c.query(ctx, issueQuery, variables, &envelope); err != nil {
		return nil, errors.Wrap(err, "query issue")
	}
	if envelope.Repository == nil || envelope.Repository.Issue == nil {
		return nil, nil
	}
	return parseIssue(*envelope.Repository.Issue), nil
}

func (c *clientImpl) PullRequest(ctx context.Context, owner, name string, number int) (*PullRequest, error) {
	variables := map[string]any{"owner": owner, "name": name, "number": number}
	var envelope itemEnvelope
	if err := c.query(ctx, pullRequestQuery, variables, &envelope); err != nil {
		return nil, errors.Wrap(err, "query pull request")
	}
	if envelope.Repository == nil || envelope.Repository.PullRequest == nil {
		return nil, nil
	}
	return parsePullRequest(*envelope.Repository.PullRequest), nil
}

// OrganizationMembers prefers the GraphQL directory query and falls back to
// the REST members listing when GraphQL is unavailable for the token.
func (c *clientImpl) OrganizationMembers(ctx context.Context, org string) ([]string, error) {
	var envelope membersEnvelope
	err := c.query(ctx, membersQuery, map[string]any{"org": org}, &envelope)
	if err == nil && envelope.Organization != nil {
		return parseLogins(envelope.Organization.MembersWithRole), nil
	}
	if err != nil {
		c.logDebug("members query failed, falling back to REST", "error", err.Error())
	}
	return c.restMembers(ctx, org, err)
}

func (c *clientImpl) restMembers(ctx context.Context, org string, graphqlErr error) ([]string, error) {
	if c.rest == nil {
		return nil, errors.Wrap(graphqlErr, "query organization members")
	}
	var logins []string
	opts := &gogithub.ListMembersOptions{ListOptions: gogithub.ListOptions{PerPage: 100}}
	for {
		members, resp, err := c.rest.Organizations.ListMembers(ctx, org, opts)
		if err != nil {
			if graphqlErr != nil {
				return nil, errors.Wrapf(graphqlErr, "list organization members (REST fallback also failed: %v)", err)
			}
			return nil, errors.Wrap(err, "list organization members")
		}
		for _, m := range members {
			if l := m.GetLogin(); l != "" {
				logins = append(logins, l)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return logins, nil
}

func (c *clientImpl) ProjectColumns(ctx context.Context, org string, number int) ([]Column, error) {
	variables := map[string]any{"org": org, "number": number}
	var envelope columnsEnvelope
	if err := c.query(ctx, columnsQuery, variables, &envelope); err != nil {
		return nil, errors.Wrap(err, "query project columns")
	}
	if envelope.Organization == nil || envelope.Organization.Project == nil || envelope.Organization.Project.Columns == nil {
		return nil, nil
	}
	project := envelope.Organization.Project
	columns := make([]Column, 0, len(project.Columns.Edges))
	for _, edge := range project.Columns.Edges {
		columns = append(columns, edge.Node)
	}
	return columns, nil
}
