package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"jira_gateway/internal/model"
)

// registerJiraTools registers all Jira-related tools with the server
func registerJiraTools(s *server.MCPServer, d Dispatcher) error {
	createIssueTool := mcp.NewTool(string(model.CommandCreateIssue),
		mcp.WithDescription("Create a new Jira issue"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project key (e.g., 'PROJ')"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Issue title"),
		),
		mcp.WithString("description",
			mcp.Description("Issue description"),
		),
		mcp.WithString("issue_type",
			mcp.Description("Issue type name, defaults to 'Task'"),
		),
		mcp.WithString("parent_issue",
			mcp.Description("Parent issue key, required for Subtask issues"),
		),
	)

	getIssueTool := mcp.NewTool(string(model.CommandGetIssue),
		mcp.WithDescription("Get details of a specific Jira issue"),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Jira issue key (e.g., 'PROJ-123')"),
		),
	)

	updateIssueTool := mcp.NewTool(string(model.CommandUpdateIssue),
		mcp.WithDescription("Update summary, description or status of a Jira issue"),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Jira issue key (e.g., 'PROJ-123')"),
		),
		mcp.WithString("summary",
			mcp.Description("New summary"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("status",
			mcp.Description("Target status; must be reachable via a workflow transition"),
		),
	)

	searchIssuesTool := mcp.NewTool(string(model.CommandSearchIssues),
		mcp.WithDescription("Search Jira issues by text"),
		mcp.WithString("search_text",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
		mcp.WithBoolean("title_only",
			mcp.Description("Restrict the search to issue summaries"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number, starting at 1"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Results per page"),
		),
	)

	getEpicTool := mcp.NewTool(string(model.CommandGetEpicWithSubtasks),
		mcp.WithDescription("Get an epic and its linked subtasks by epic name"),
		mcp.WithString("epic_name",
			mcp.Required(),
			mcp.Description("Name of the epic; must resolve to exactly one epic"),
		),
		mcp.WithNumber("page",
			mcp.Description("Subtask page number, starting at 1"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Subtasks per page"),
		),
	)

	getMyIssuesTool := mcp.NewTool(string(model.CommandGetMyIssues),
		mcp.WithDescription("List issues assigned to the authenticated user"),
		mcp.WithString("status",
			mcp.Description("Optional status filter (e.g., 'In Progress')"),
		),
		mcp.WithString("project",
			mcp.Description("Optional project key filter"),
		),
		mcp.WithString("sort_by",
			mcp.Description("One of created, updated, priority, status, duedate"),
		),
		mcp.WithString("sort_order",
			mcp.Description("asc or desc"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number, starting at 1"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Results per page"),
		),
	)

	getTransitionsTool := mcp.NewTool(string(model.CommandGetTransitions),
		mcp.WithDescription("List available workflow transitions for a Jira issue"),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Jira issue key (e.g., 'PROJ-123')"),
		),
	)

	// Register tools with handlers; every tool funnels into the same dispatcher
	for _, tool := range []mcp.Tool{
		createIssueTool,
		getIssueTool,
		updateIssueTool,
		searchIssuesTool,
		getEpicTool,
		getMyIssuesTool,
		getTransitionsTool,
	} {
		command := model.Command(tool.Name)
		s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return dispatchTool(ctx, d, command, request)
		})
	}

	return nil
}

func dispatchTool(ctx context.Context, d Dispatcher, command model.Command, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env := d.Dispatch(ctx, model.CommandRequest{
		Command: command,
		Data:    request.GetArguments(),
	})

	// convert result to json string
	jsonResult, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %v", err)
	}

	return mcp.NewToolResultText(string(jsonResult)), nil
}
