package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionType enumerates the actions the model may request.
type ActionType string

const (
	ActionNavigate ActionType = "navigate"
	ActionClick    ActionType = "click"
	ActionFill     ActionType = "fill"
	ActionExtract  ActionType = "extract"
	ActionDone     ActionType = "done"
)

// Action is one step decision from the model.
type Action struct {
	Type     ActionType `json:"action"`
	Reason   string     `json:"reason,omitempty"`
	URL      string     `json:"url,omitempty"`
	Selector string     `json:"selector,omitempty"`
	Text     string     `json:"text,omitempty"`
	Result   string     `json:"result,omitempty"`
}

// ParseAction extracts the JSON action object from a model reply. Models tend
// to wrap the object in code fences or surround it with prose, so parsing
// works on the outermost brace pair.
func ParseAction(reply string) (*Action, error) {
	raw := strings.TrimSpace(reply)
	if fenced := stripCodeFence(raw); fenced != "" {
		raw = fenced
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("reply contains no JSON object: %q", truncate(reply, 120))
	}

	var action Action
	if err := json.Unmarshal([]byte(raw[start:end+1]), &action); err != nil {
		return nil, fmt.Errorf("invalid action JSON: %w", err)
	}
	if err := action.validate(); err != nil {
		return nil, err
	}
	return &action, nil
}

func (a *Action) validate() error {
	switch a.Type {
	case ActionNavigate:
		if a.URL == "" {
			return fmt.Errorf("navigate action requires a url")
		}
	case ActionClick:
		if a.Selector == "" {
			return fmt.Errorf("click action requires a selector")
		}
	case ActionFill:
		if a.Selector == "" {
			return fmt.Errorf("fill action requires a selector")
		}
	case ActionExtract, ActionDone:
	case "":
		return fmt.Errorf("action field is missing")
	default:
		return fmt.Errorf("unknown action %q", a.Type)
	}
	return nil
}

// stripCodeFence returns the body of the first ``` fence, or "" when the
// reply is not fenced.
func stripCodeFence(raw string) string {
	start := strings.Index(raw, "```")
	if start == -1 {
		return ""
	}
	body := raw[start+3:]
	if nl := strings.Index(body, "\n"); nl != -1 && !strings.ContainsAny(body[:nl], "{}") {
		// Drop a language tag like ```json.
		body = body[nl+1:]
	}
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
