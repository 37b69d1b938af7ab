package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jira_gateway/internal/config"
	"jira_gateway/internal/jira"
	"jira_gateway/internal/model"
)

type fakeJira struct {
	issues      map[string]model.JiraIssue
	transitions []model.JiraTransition

	searchFn func(jql string, startAt, maxResults int) (model.JiraSearchResponse, error)

	createCalls     int
	updateCalls     int
	transitionCalls int
	searchCalls     int

	lastCreateFields map[string]any
	lastUpdateFields map[string]any
	lastTransitionID string
	lastJQL          string
	lastStartAt      int
	lastMaxResults   int

	tokenUser  string
	tokenValue string
}

func (f *fakeJira) Myself(ctx context.Context) (model.JiraUser, error) {
	return model.JiraUser{Name: "tester", DisplayName: "Tester"}, nil
}

func (f *fakeJira) CreateIssue(ctx context.Context, fields map[string]any) (model.JiraCreateResponse, error) {
	f.createCalls++
	f.lastCreateFields = fields
	return model.JiraCreateResponse{ID: "10001", Key: "PROJ-1", Self: "https://jira.example.com/rest/api/2/issue/10001"}, nil
}

func (f *fakeJira) Issue(ctx context.Context, key string) (model.JiraIssue, error) {
	issue, ok := f.issues[key]
	if !ok {
		return model.JiraIssue{}, &jira.APIError{StatusCode: http.StatusNotFound, Message: "Issue does not exist"}
	}
	return issue, nil
}

func (f *fakeJira) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	f.updateCalls++
	f.lastUpdateFields = fields
	if _, ok := f.issues[key]; !ok {
		return &jira.APIError{StatusCode: http.StatusNotFound, Message: "Issue does not exist"}
	}
	return nil
}

func (f *fakeJira) Search(ctx context.Context, jql string, startAt, maxResults int) (model.JiraSearchResponse, error) {
	f.searchCalls++
	f.lastJQL = jql
	f.lastStartAt = startAt
	f.lastMaxResults = maxResults
	if f.searchFn != nil {
		return f.searchFn(jql, startAt, maxResults)
	}
	return model.JiraSearchResponse{}, nil
}

func (f *fakeJira) SearchAll(ctx context.Context, jql string, pageSize int) ([]model.JiraIssue, error) {
	res, err := f.Search(ctx, jql, 0, pageSize)
	if err != nil {
		return nil, err
	}
	return res.Issues, nil
}

func (f *fakeJira) Transitions(ctx context.Context, key string) ([]model.JiraTransition, error) {
	if _, ok := f.issues[key]; !ok {
		return nil, &jira.APIError{StatusCode: http.StatusNotFound, Message: "Issue does not exist"}
	}
	return f.transitions, nil
}

func (f *fakeJira) Transition(ctx context.Context, key, transitionID string) error {
	f.transitionCalls++
	f.lastTransitionID = transitionID
	return nil
}

func (f *fakeJira) WithToken(user, token string) JiraAPI {
	f.tokenUser = user
	f.tokenValue = token
	return f
}

func testIssue(key, summary, status string) model.JiraIssue {
	return model.JiraIssue{
		Key: key,
		Fields: model.JiraFields{
			Summary:   summary,
			Status:    model.JiraName{Name: status},
			IssueType: model.JiraIssueType{Name: "Task"},
			Project:   model.JiraProject{Key: "PROJ", Name: "Project"},
		},
	}
}

func newTestHandler(f *fakeJira) *CommandHandler {
	cfg := &config.Config{JiraMaxResults: 50}
	return New(cfg, f, nil, nil)
}

func dispatch(t *testing.T, h *CommandHandler, cmd model.Command, data map[string]any) model.Envelope {
	t.Helper()
	return h.Dispatch(context.Background(), model.CommandRequest{Command: cmd, Data: data})
}

func TestDispatch_UnknownCommand(t *testing.T) {
	h := newTestHandler(&fakeJira{})
	env := dispatch(t, h, "frobnicate", nil)
	require.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "Unknown command: frobnicate", env.Message)
}

func TestDispatch_NoCommand(t *testing.T) {
	h := newTestHandler(&fakeJira{})
	env := dispatch(t, h, "", nil)
	require.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "No command specified", env.Message)
}

func TestCreateIssue_MissingFieldsIssuesNoJiraCall(t *testing.T) {
	f := &fakeJira{}
	h := newTestHandler(f)

	for _, data := range []map[string]any{
		{},
		{"project": "PROJ"},
		{"summary": "a summary"},
	} {
		env := dispatch(t, h, model.CommandCreateIssue, data)
		require.Equal(t, model.StatusError, env.Status)
	}
	assert.Equal(t, 0, f.createCalls, "no Jira call may be issued for invalid input")
}

func TestCreateIssue_DefaultsToTask(t *testing.T) {
	f := &fakeJira{issues: map[string]model.JiraIssue{
		"PROJ-1": testIssue("PROJ-1", "a summary", "To Do"),
	}}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandCreateIssue, map[string]any{
		"project": "PROJ",
		"summary": "a summary",
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	require.Equal(t, 1, f.createCalls)

	issuetype, ok := f.lastCreateFields["issuetype"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Task", issuetype["name"])

	issue, ok := env.Data.(model.Issue)
	require.True(t, ok)
	assert.Equal(t, "PROJ-1", issue.Key)
	assert.Equal(t, "a summary", issue.Summary)
}

func TestCreateIssue_SubtaskCarriesParent(t *testing.T) {
	f := &fakeJira{issues: map[string]model.JiraIssue{
		"PROJ-1": testIssue("PROJ-1", "child", "To Do"),
	}}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandCreateIssue, map[string]any{
		"project":      "PROJ",
		"summary":      "child",
		"issue_type":   "Subtask",
		"parent_issue": "PROJ-9",
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	parent, ok := f.lastCreateFields["parent"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PROJ-9", parent["key"])
}

func TestGetIssue_InvalidKey(t *testing.T) {
	h := newTestHandler(&fakeJira{})
	for _, key := range []string{"", "proj-1", "PROJ1", "PROJ-", "1-PROJ", "A-1"} {
		env := dispatch(t, h, model.CommandGetIssue, map[string]any{"issue_key": key})
		require.Equal(t, model.StatusError, env.Status, "key %q must be rejected", key)
	}
}

func TestGetIssue_NotFound(t *testing.T) {
	h := newTestHandler(&fakeJira{issues: map[string]model.JiraIssue{}})
	env := dispatch(t, h, model.CommandGetIssue, map[string]any{"issue_key": "PROJ-404"})
	require.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "Issue PROJ-404 not found", env.Message)
}

func TestUpdateIssue_EmptyUpdateIsNoOp(t *testing.T) {
	f := &fakeJira{issues: map[string]model.JiraIssue{
		"PROJ-1": testIssue("PROJ-1", "unchanged", "To Do"),
	}}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandUpdateIssue, map[string]any{"issue_key": "PROJ-1"})
	require.Equal(t, model.StatusSuccess, env.Status)
	assert.Equal(t, 0, f.updateCalls, "empty update must not issue a PUT")

	issue, ok := env.Data.(model.Issue)
	require.True(t, ok)
	assert.Equal(t, "unchanged", issue.Summary)
}

func TestUpdateIssue_TransitionNotFoundListsAvailable(t *testing.T) {
	f := &fakeJira{
		issues: map[string]model.JiraIssue{"PROJ-1": testIssue("PROJ-1", "s", "To Do")},
		transitions: []model.JiraTransition{
			{ID: "11", Name: "start", To: model.JiraName{Name: "In Progress"}},
			{ID: "21", Name: "finish", To: model.JiraName{Name: "Done"}},
		},
	}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandUpdateIssue, map[string]any{
		"issue_key": "PROJ-1",
		"status":    "Blocked",
	})
	require.Equal(t, model.StatusError, env.Status)
	assert.Contains(t, env.Message, "No transition found to status: Blocked")
	assert.Contains(t, env.Message, "In Progress, Done")
	assert.Equal(t, 0, f.transitionCalls)
}

func TestUpdateIssue_TransitionMatchesCaseInsensitively(t *testing.T) {
	f := &fakeJira{
		issues: map[string]model.JiraIssue{"PROJ-1": testIssue("PROJ-1", "s", "To Do")},
		transitions: []model.JiraTransition{
			{ID: "31", Name: "start", To: model.JiraName{Name: "In Progress"}},
		},
	}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandUpdateIssue, map[string]any{
		"issue_key": "PROJ-1",
		"status":    "in progress",
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	assert.Equal(t, 1, f.transitionCalls)
	assert.Equal(t, "31", f.lastTransitionID)
}

func TestUpdateIssue_FieldsSent(t *testing.T) {
	f := &fakeJira{issues: map[string]model.JiraIssue{
		"PROJ-1": testIssue("PROJ-1", "new summary", "To Do"),
	}}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandUpdateIssue, map[string]any{
		"issue_key":   "PROJ-1",
		"summary":     "new summary",
		"description": "new description",
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	require.Equal(t, 1, f.updateCalls)
	assert.Equal(t, "new summary", f.lastUpdateFields["summary"])
	assert.Equal(t, "new description", f.lastUpdateFields["description"])
}

func TestSearchIssues_TitleOnlyJQL(t *testing.T) {
	f := &fakeJira{}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandSearchIssues, map[string]any{
		"search_text": "login bug",
		"title_only":  true,
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	assert.Equal(t, `summary ~ "login bug" AND issuetype != Epic`, f.lastJQL)
}

func TestSearchIssues_FullTextJQL(t *testing.T) {
	f := &fakeJira{}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandSearchIssues, map[string]any{
		"search_text": "login bug",
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	assert.Equal(t, `(summary ~ "login bug" OR description ~ "login bug") AND issuetype != Epic`, f.lastJQL)
}

func TestSearchIssues_EscapesQuotes(t *testing.T) {
	f := &fakeJira{}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandSearchIssues, map[string]any{
		"search_text": `say "hello"`,
		"title_only":  true,
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	assert.Equal(t, `summary ~ "say \"hello\"" AND issuetype != Epic`, f.lastJQL)
}

func TestSearchIssues_PageSizeClamped(t *testing.T) {
	f := &fakeJira{searchFn: func(jql string, startAt, maxResults int) (model.JiraSearchResponse, error) {
		return model.JiraSearchResponse{Total: 120}, nil
	}}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandSearchIssues, map[string]any{
		"search_text": "anything",
		"page_size":   500,
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	assert.Equal(t, 50, f.lastMaxResults)

	page, ok := env.Data.(model.IssuePage)
	require.True(t, ok)
	assert.Equal(t, 50, page.Pagination.PageSize)
	assert.Equal(t, 120, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestSearchIssues_MissingText(t *testing.T) {
	f := &fakeJira{}
	h := newTestHandler(f)
	env := dispatch(t, h, model.CommandSearchIssues, map[string]any{})
	require.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "Missing search text", env.Message)
	assert.Equal(t, 0, f.searchCalls)
}

func epicSearchFake(epics []model.JiraIssue, subtasks []model.JiraIssue) *fakeJira {
	return &fakeJira{searchFn: func(jql string, startAt, maxResults int) (model.JiraSearchResponse, error) {
		if strings.Contains(jql, "issuetype = Epic") {
			return model.JiraSearchResponse{Total: len(epics), Issues: epics}, nil
		}
		if strings.Contains(jql, "Epic Link") {
			return model.JiraSearchResponse{Total: len(subtasks), Issues: subtasks}, nil
		}
		return model.JiraSearchResponse{}, fmt.Errorf("unexpected jql: %s", jql)
	}}
}

func TestGetEpic_NoMatchIsNotFound(t *testing.T) {
	h := newTestHandler(epicSearchFake(nil, nil))
	env := dispatch(t, h, model.CommandGetEpicWithSubtasks, map[string]any{"epic_name": "Lost Epic"})
	require.Equal(t, model.StatusError, env.Status)
	assert.Contains(t, env.Message, "No epic found")
}

func TestGetEpic_AmbiguousNameRejected(t *testing.T) {
	epics := []model.JiraIssue{
		testIssue("PROJ-10", "Checkout revamp phase 1", "Open"),
		testIssue("PROJ-11", "Checkout revamp phase 2", "Open"),
	}
	h := newTestHandler(epicSearchFake(epics, nil))

	env := dispatch(t, h, model.CommandGetEpicWithSubtasks, map[string]any{"epic_name": "Checkout revamp"})
	require.Equal(t, model.StatusError, env.Status)
	assert.Contains(t, env.Message, "matches 2 epics")
}

func TestGetEpic_ExactSummaryDisambiguates(t *testing.T) {
	epics := []model.JiraIssue{
		testIssue("PROJ-10", "Checkout revamp", "Open"),
		testIssue("PROJ-11", "Checkout revamp phase 2", "Open"),
	}
	subtasks := []model.JiraIssue{
		testIssue("PROJ-20", "subtask one", "Open"),
		testIssue("PROJ-21", "subtask two", "Open"),
		testIssue("PROJ-22", "subtask three", "Open"),
	}
	h := newTestHandler(epicSearchFake(epics, subtasks))

	env := dispatch(t, h, model.CommandGetEpicWithSubtasks, map[string]any{
		"epic_name": "checkout revamp",
		"page_size": 2,
	})
	require.Equal(t, model.StatusSuccess, env.Status)

	result, ok := env.Data.(model.EpicWithSubtasks)
	require.True(t, ok)
	assert.Equal(t, "PROJ-10", result.Epic.Key)
	assert.Len(t, result.Subtasks, 2)
	assert.Equal(t, model.Pagination{Total: 3, Page: 1, PageSize: 2, TotalPages: 2}, result.Pagination)
}

func TestGetEpic_PageBeyondEndIsEmptyNotError(t *testing.T) {
	epics := []model.JiraIssue{testIssue("PROJ-10", "Solo epic", "Open")}
	subtasks := []model.JiraIssue{
		testIssue("PROJ-20", "one", "Open"),
		testIssue("PROJ-21", "two", "Open"),
	}
	h := newTestHandler(epicSearchFake(epics, subtasks))

	env := dispatch(t, h, model.CommandGetEpicWithSubtasks, map[string]any{
		"epic_name": "Solo epic",
		"page":      9,
		"page_size": 2,
	})
	require.Equal(t, model.StatusSuccess, env.Status)

	result, ok := env.Data.(model.EpicWithSubtasks)
	require.True(t, ok)
	assert.Empty(t, result.Subtasks)
	assert.Equal(t, 2, result.Pagination.Total)
	assert.Equal(t, 1, result.Pagination.TotalPages)
}

func TestGetEpic_ExtremePageNumberIsEmptyNotError(t *testing.T) {
	epics := []model.JiraIssue{testIssue("PROJ-10", "Solo epic", "Open")}
	subtasks := []model.JiraIssue{testIssue("PROJ-20", "one", "Open")}
	h := newTestHandler(epicSearchFake(epics, subtasks))

	env := dispatch(t, h, model.CommandGetEpicWithSubtasks, map[string]any{
		"epic_name": "Solo epic",
		"page":      1 << 62,
		"page_size": 20,
	})
	require.Equal(t, model.StatusSuccess, env.Status)

	result, ok := env.Data.(model.EpicWithSubtasks)
	require.True(t, ok)
	assert.Empty(t, result.Subtasks)
	assert.Equal(t, 1, result.Pagination.Total)
}

func TestGetMyIssues_InvalidSortRejected(t *testing.T) {
	f := &fakeJira{}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandGetMyIssues, map[string]any{"sort_by": "summary"})
	require.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "Invalid sort_by: summary", env.Message)

	env = dispatch(t, h, model.CommandGetMyIssues, map[string]any{"sort_order": "sideways"})
	require.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "Invalid sort_order: sideways", env.Message)

	assert.Equal(t, 0, f.searchCalls)
}

func TestGetMyIssues_FiltersSortingAndPagination(t *testing.T) {
	page := []model.JiraIssue{
		testIssue("PROJ-5", "newest", "In Progress"),
		testIssue("PROJ-4", "second newest", "In Progress"),
	}
	f := &fakeJira{searchFn: func(jql string, startAt, maxResults int) (model.JiraSearchResponse, error) {
		return model.JiraSearchResponse{Total: 5, StartAt: startAt, MaxResults: maxResults, Issues: page}, nil
	}}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandGetMyIssues, map[string]any{
		"status":     "In Progress",
		"sort_by":    "updated",
		"sort_order": "desc",
		"page":       1,
		"page_size":  2,
	})
	require.Equal(t, model.StatusSuccess, env.Status)

	assert.Equal(t, `assignee = currentUser() AND status = "In Progress" ORDER BY updated DESC`, f.lastJQL)
	assert.Equal(t, 0, f.lastStartAt)
	assert.Equal(t, 2, f.lastMaxResults)

	result, ok := env.Data.(model.IssuePage)
	require.True(t, ok)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, "PROJ-5", result.Issues[0].Key)
	assert.Equal(t, "PROJ-4", result.Issues[1].Key)
	assert.Equal(t, model.Pagination{Total: 5, Page: 1, PageSize: 2, TotalPages: 3}, result.Pagination)
}

func TestGetMyIssues_ProjectFilterAndOffset(t *testing.T) {
	f := &fakeJira{searchFn: func(jql string, startAt, maxResults int) (model.JiraSearchResponse, error) {
		return model.JiraSearchResponse{Total: 30}, nil
	}}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandGetMyIssues, map[string]any{
		"project":   "PROJ",
		"page":      3,
		"page_size": 10,
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	assert.Equal(t, `assignee = currentUser() AND project = "PROJ" ORDER BY updated DESC`, f.lastJQL)
	assert.Equal(t, 20, f.lastStartAt)
}

func TestGetTransitions(t *testing.T) {
	f := &fakeJira{
		issues: map[string]model.JiraIssue{"PROJ-1": testIssue("PROJ-1", "s", "To Do")},
		transitions: []model.JiraTransition{
			{ID: "11", Name: "start", To: model.JiraName{Name: "In Progress"}},
			{ID: "21", Name: "finish", To: model.JiraName{Name: "Done"}},
			{ID: "22", Name: "resolve", To: model.JiraName{Name: "Done"}},
		},
	}
	h := newTestHandler(f)

	env := dispatch(t, h, model.CommandGetTransitions, map[string]any{"issue_key": "PROJ-1"})
	require.Equal(t, model.StatusSuccess, env.Status)

	list, ok := env.Data.(model.TransitionList)
	require.True(t, ok)
	assert.Equal(t, "To Do", list.CurrentStatus)
	assert.Equal(t, []string{"Done", "In Progress"}, list.PossibleNextStatuses)
	require.Len(t, list.Details, 3)
	assert.Equal(t, "To Do", list.Details[0].FromStatus)
}

type fakeTokenStore struct {
	tokens map[string]string
}

func (s *fakeTokenStore) GetToken(userID string) (string, error) {
	token, ok := s.tokens[userID]
	if !ok {
		return "", fmt.Errorf("no token for %s", userID)
	}
	return token, nil
}

func (s *fakeTokenStore) SetToken(userID, token string) error {
	s.tokens[userID] = token
	return nil
}

func TestDispatch_PersonalTokenRouting(t *testing.T) {
	f := &fakeJira{issues: map[string]model.JiraIssue{
		"PROJ-1": testIssue("PROJ-1", "s", "To Do"),
	}}
	cfg := &config.Config{JiraMaxResults: 50}
	store := &fakeTokenStore{tokens: map[string]string{"alice@example.com": "alice-token"}}
	h := New(cfg, f, store, nil)

	env := dispatch(t, h, model.CommandGetIssue, map[string]any{
		"issue_key": "PROJ-1",
		"user_id":   "alice@example.com",
	})
	require.Equal(t, model.StatusSuccess, env.Status)
	assert.Equal(t, "alice@example.com", f.tokenUser)
	assert.Equal(t, "alice-token", f.tokenValue)
}

func TestDispatch_UnknownCommandWinsOverTokenLookup(t *testing.T) {
	cfg := &config.Config{JiraMaxResults: 50}
	store := &fakeTokenStore{tokens: map[string]string{}}
	h := New(cfg, &fakeJira{}, store, nil)

	env := dispatch(t, h, "frobnicate", map[string]any{"user_id": "nobody@example.com"})
	require.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "Unknown command: frobnicate", env.Message)
}

func TestDispatch_UnknownPersonalTokenFails(t *testing.T) {
	f := &fakeJira{}
	cfg := &config.Config{JiraMaxResults: 50}
	store := &fakeTokenStore{tokens: map[string]string{}}
	h := New(cfg, f, store, nil)

	env := dispatch(t, h, model.CommandGetIssue, map[string]any{
		"issue_key": "PROJ-1",
		"user_id":   "bob@example.com",
	})
	require.Equal(t, model.StatusError, env.Status)
	assert.Contains(t, env.Message, "bob@example.com")
}
