package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jira_gateway/internal/model"
)

// Client is a thin adapter over the Jira REST API (v2). It holds no state
// beyond credentials and is safe for concurrent use.
type Client struct {
	baseURL string
	user    string
	token   string
	http    *http.Client
}

// NewClient creates a Jira client authenticating with basic auth (user + API token).
func NewClient(baseURL, user, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		user:    user,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken derives a client bound to a different personal token. The
// underlying HTTP client and base URL are shared.
func (c *Client) WithToken(user, token string) *Client {
	return &Client{
		baseURL: c.baseURL,
		user:    user,
		token:   token,
		http:    c.http,
	}
}

// APIError is a non-2xx reply from Jira.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira api error: %d - %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a Jira 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// jiraErrorBody is the error shape Jira returns on failed calls
type jiraErrorBody struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

func (c *Client) apiURL(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u = u + "?" + q.Encode()
	}
	return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.user, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("jira request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode jira response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var body jiraErrorBody
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		parts := body.ErrorMessages
		for field, m := range body.Errors {
			parts = append(parts, fmt.Sprintf("%s: %s", field, m))
		}
		msg = strings.Join(parts, "; ")
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// Myself returns the user the client authenticates as.
func (c *Client) Myself(ctx context.Context) (model.JiraUser, error) {
	var me model.JiraUser
	err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/2/myself", nil), nil, &me)
	return me, err
}

// CreateIssue creates an issue from raw field values and returns the created key.
func (c *Client) CreateIssue(ctx context.Context, fields map[string]any) (model.JiraCreateResponse, error) {
	var created model.JiraCreateResponse
	body := map[string]any{"fields": fields}
	err := c.doJSON(ctx, http.MethodPost, c.apiURL("/rest/api/2/issue", nil), body, &created)
	return created, err
}

// Issue fetches a single issue by key.
func (c *Client) Issue(ctx context.Context, key string) (model.JiraIssue, error) {
	var issue model.JiraIssue
	err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/2/issue/"+url.PathEscape(key), nil), nil, &issue)
	return issue, err
}

// UpdateIssue applies raw field updates to an issue.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	body := map[string]any{"fields": fields}
	return c.doJSON(ctx, http.MethodPut, c.apiURL("/rest/api/2/issue/"+url.PathEscape(key), nil), body, nil)
}

// Search runs a JQL query returning one page of results. Total reflects the
// full match count regardless of the requested window.
func (c *Client) Search(ctx context.Context, jql string, startAt, maxResults int) (model.JiraSearchResponse, error) {
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("startAt", strconv.Itoa(startAt))
	q.Set("maxResults", strconv.Itoa(maxResults))
	var res model.JiraSearchResponse
	err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/2/search", q), nil, &res)
	return res, err
}

// SearchAll runs a JQL query and follows startAt paging until the full result
// set has been collected.
func (c *Client) SearchAll(ctx context.Context, jql string, pageSize int) ([]model.JiraIssue, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	var all []model.JiraIssue
	startAt := 0
	for {
		page, err := c.Search(ctx, jql, startAt, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Issues...)
		if len(page.Issues) == 0 || len(all) >= page.Total {
			break
		}
		startAt += len(page.Issues)
	}
	return all, nil
}

// Transitions lists the workflow transitions available on an issue.
func (c *Client) Transitions(ctx context.Context, key string) ([]model.JiraTransition, error) {
	var res model.JiraTransitionsResponse
	u := c.apiURL("/rest/api/2/issue/"+url.PathEscape(key)+"/transitions", nil)
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &res); err != nil {
		return nil, err
	}
	return res.Transitions, nil
}

// Transition moves an issue through the workflow transition with the given id.
func (c *Client) Transition(ctx context.Context, key, transitionID string) error {
	body := map[string]any{"transition": map[string]any{"id": transitionID}}
	u := c.apiURL("/rest/api/2/issue/"+url.PathEscape(key)+"/transitions", nil)
	return c.doJSON(ctx, http.MethodPost, u, body, nil)
}
