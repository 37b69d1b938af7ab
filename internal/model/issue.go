package model

// Issue is the normalized projection of a Jira issue returned to callers.
// It is built fresh from live Jira data on every response.
type Issue struct {
	Key         string  `json:"key"`
	Summary     string  `json:"summary"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	IssueType   string  `json:"issue_type"`
	Project     string  `json:"project"`
	Priority    *string `json:"priority,omitempty"`
	Assignee    *string `json:"assignee,omitempty"`
	Reporter    *string `json:"reporter,omitempty"`
	Created     string  `json:"created,omitempty"`
	Updated     string  `json:"updated,omitempty"`
	DueDate     *string `json:"duedate,omitempty"`
}

// Pagination describes the page of a result list.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// IssuePage is a page of issues plus its pagination block.
type IssuePage struct {
	Issues     []Issue    `json:"issues"`
	Pagination Pagination `json:"pagination"`
}

// EpicWithSubtasks pairs a resolved epic with a page of its linked subtasks.
// The epic itself is never paginated.
type EpicWithSubtasks struct {
	Epic       Issue      `json:"epic"`
	Subtasks   []Issue    `json:"subtasks"`
	Pagination Pagination `json:"pagination"`
}

// TransitionDetail is one workflow transition available on an issue.
type TransitionDetail struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// TransitionList is the get_transitions payload.
type TransitionList struct {
	IssueKey             string             `json:"issue_key"`
	CurrentStatus        string             `json:"current_status"`
	PossibleNextStatuses []string           `json:"possible_next_statuses"`
	Details              []TransitionDetail `json:"details"`
}
