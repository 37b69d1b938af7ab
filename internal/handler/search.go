package handler

import (
	"context"
	"fmt"
	"strings"

	"jira_gateway/internal/model"
)

var myIssuesSortFields = map[string]bool{
	"created":  true,
	"updated":  true,
	"priority": true,
	"status":   true,
	"duedate":  true,
}

// escapeJQL makes a user-supplied value safe to embed in a quoted JQL string.
func escapeJQL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func (h *CommandHandler) searchIssues(ctx context.Context, api JiraAPI, data map[string]any) (any, error) {
	searchText := stringField(data, "search_text")
	if searchText == "" {
		return nil, fmt.Errorf("Missing search text")
	}
	titleOnly := boolField(data, "title_only")
	page, pageSize := h.pageParams(data)

	text := escapeJQL(searchText)
	var jql string
	if titleOnly {
		jql = fmt.Sprintf(`summary ~ "%s" AND issuetype != Epic`, text)
	} else {
		jql = fmt.Sprintf(`(summary ~ "%s" OR description ~ "%s") AND issuetype != Epic`, text, text)
	}

	res, err := api.Search(ctx, jql, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	return model.IssuePage{
		Issues:     normalizeAll(res.Issues),
		Pagination: pageMeta(res.Total, page, pageSize),
	}, nil
}

func (h *CommandHandler) getEpicWithSubtasks(ctx context.Context, api JiraAPI, data map[string]any) (any, error) {
	epicName := stringField(data, "epic_name")
	if epicName == "" {
		return nil, fmt.Errorf("Missing epic name")
	}
	page, pageSize := h.pageParams(data)

	epic, err := h.resolveEpic(ctx, api, epicName)
	if err != nil {
		return nil, err
	}

	subtasksJQL := fmt.Sprintf(`"Epic Link" = %s ORDER BY created DESC`, epic.Key)
	raw, err := api.SearchAll(ctx, subtasksJQL, h.cfg.JiraMaxResults)
	if err != nil {
		return nil, err
	}

	pageSlice, meta := paginate(normalizeAll(raw), page, pageSize)
	return model.EpicWithSubtasks{
		Epic:       epic.Normalized(),
		Subtasks:   pageSlice,
		Pagination: meta,
	}, nil
}

// resolveEpic finds the single epic matching the given name. Zero matches is
// a not-found error. Multiple fuzzy matches are accepted only when exactly one
// of them matches the name exactly (case-insensitive); anything else is
// ambiguous and rejected rather than guessed at.
func (h *CommandHandler) resolveEpic(ctx context.Context, api JiraAPI, epicName string) (model.JiraIssue, error) {
	jql := fmt.Sprintf(`issuetype = Epic AND summary ~ "%s"`, escapeJQL(epicName))
	res, err := api.Search(ctx, jql, 0, 5)
	if err != nil {
		return model.JiraIssue{}, err
	}

	switch {
	case len(res.Issues) == 0:
		return model.JiraIssue{}, fmt.Errorf("No epic found with name containing %q", epicName)
	case len(res.Issues) == 1:
		return res.Issues[0], nil
	}

	var exact []model.JiraIssue
	for _, e := range res.Issues {
		if strings.EqualFold(e.Fields.Summary, epicName) {
			exact = append(exact, e)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	return model.JiraIssue{}, fmt.Errorf("No epic found: name %q matches %d epics", epicName, len(res.Issues))
}

func (h *CommandHandler) getMyIssues(ctx context.Context, api JiraAPI, data map[string]any) (any, error) {
	page, pageSize := h.pageParams(data)

	sortBy := stringField(data, "sort_by")
	if sortBy == "" {
		sortBy = "updated"
	}
	if !myIssuesSortFields[sortBy] {
		return nil, fmt.Errorf("Invalid sort_by: %s", sortBy)
	}
	sortOrder := strings.ToLower(stringField(data, "sort_order"))
	if sortOrder == "" {
		sortOrder = "desc"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		return nil, fmt.Errorf("Invalid sort_order: %s", sortOrder)
	}

	jqlParts := []string{"assignee = currentUser()"}
	if status := stringField(data, "status"); status != "" {
		jqlParts = append(jqlParts, fmt.Sprintf(`status = "%s"`, escapeJQL(status)))
	}
	if project := stringField(data, "project"); project != "" {
		jqlParts = append(jqlParts, fmt.Sprintf(`project = "%s"`, escapeJQL(project)))
	}
	jql := strings.Join(jqlParts, " AND ") + fmt.Sprintf(" ORDER BY %s %s", sortBy, strings.ToUpper(sortOrder))

	res, err := api.Search(ctx, jql, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	return model.IssuePage{
		Issues:     normalizeAll(res.Issues),
		Pagination: pageMeta(res.Total, page, pageSize),
	}, nil
}

func normalizeAll(raw []model.JiraIssue) []model.Issue {
	out := make([]model.Issue, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Normalized())
	}
	return out
}
