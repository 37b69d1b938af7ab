package model

// JiraIssue represents a Jira issue response
type JiraIssue struct {
	ID     string     `json:"id"`
	Key    string     `json:"key"`
	Self   string     `json:"self"`
	Fields JiraFields `json:"fields"`
}

// JiraFields represents the fields in a Jira issue
type JiraFields struct {
	Summary     string        `json:"summary"`
	Description *string       `json:"description"`
	Status      JiraName      `json:"status"`
	IssueType   JiraIssueType `json:"issuetype"`
	Project     JiraProject   `json:"project"`
	Priority    *JiraName     `json:"priority"`
	Assignee    *JiraUser     `json:"assignee"`
	Reporter    *JiraUser     `json:"reporter"`
	Created     string        `json:"created"`
	Updated     string        `json:"updated"`
	DueDate     *string       `json:"duedate"`
}

// JiraName is a named Jira entity such as a status or priority
type JiraName struct {
	Name string `json:"name"`
}

// JiraIssueType represents the type of a Jira issue
type JiraIssueType struct {
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}

// JiraProject represents the project a Jira issue belongs to
type JiraProject struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// JiraUser represents a Jira user
type JiraUser struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// JiraSearchResponse represents the response from a Jira search
type JiraSearchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []JiraIssue `json:"issues"`
}

// JiraTransition is one workflow transition as Jira reports it
type JiraTransition struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	To   JiraName `json:"to"`
}

// JiraTransitionsResponse represents the response from the transitions endpoint
type JiraTransitionsResponse struct {
	Transitions []JiraTransition `json:"transitions"`
}

// JiraCreateResponse represents the response from issue creation
type JiraCreateResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Normalized projects the raw Jira issue to the stable field set returned to callers.
func (i JiraIssue) Normalized() Issue {
	out := Issue{
		Key:         i.Key,
		Summary:     i.Fields.Summary,
		Description: i.Fields.Description,
		Status:      i.Fields.Status.Name,
		IssueType:   i.Fields.IssueType.Name,
		Project:     i.Fields.Project.Key,
		Created:     i.Fields.Created,
		Updated:     i.Fields.Updated,
		DueDate:     i.Fields.DueDate,
	}
	if i.Fields.Priority != nil {
		out.Priority = &i.Fields.Priority.Name
	}
	if i.Fields.Assignee != nil {
		out.Assignee = &i.Fields.Assignee.DisplayName
	}
	if i.Fields.Reporter != nil {
		out.Reporter = &i.Fields.Reporter.DisplayName
	}
	return out
}
