package model

import "fmt"

// Command identifies one of the supported gateway operations.
type Command string

const (
	CommandCreateIssue         Command = "create_issue"
	CommandGetIssue            Command = "get_issue"
	CommandUpdateIssue         Command = "update_issue"
	CommandSearchIssues        Command = "search_issues"
	CommandGetEpicWithSubtasks Command = "get_epic_with_subtasks"
	CommandGetMyIssues         Command = "get_my_issues"
	CommandGetTransitions      Command = "get_transitions"
)

// CommandRequest is the body accepted by POST /mcp.
type CommandRequest struct {
	Command Command        `json:"command"`
	Data    map[string]any `json:"data"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the fixed success/error wrapper returned by every command.
// Exactly one of Data or Message is populated.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success wraps a payload in the success variant
func Success(data any) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

// Errorf builds the error variant with a formatted message
func Errorf(format string, args ...any) Envelope {
	return Envelope{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}
