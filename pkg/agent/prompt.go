package agent

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a web browsing agent. You control a Chrome page and work one step at a time toward completing the user's task.

Each turn you receive the current page (URL, title, visible text) and the outcomes of your recent steps. Reply with exactly one JSON object and nothing else:

{"action": "navigate", "url": "https://...", "reason": "..."}
{"action": "click", "selector": "<css selector>", "reason": "..."}
{"action": "fill", "selector": "<css selector>", "text": "<value>", "reason": "..."}
{"action": "extract", "selector": "<css selector or empty for whole page>", "reason": "..."}
{"action": "done", "result": "<your answer to the task>"}

Rules:
- Use "done" as soon as the task is complete; put the answer in "result".
- Use plain CSS selectors that exist in the shown page text.
- If a step failed, try a different approach instead of repeating it.`

// historyWindow is how many recent step outcomes are replayed to the model.
const historyWindow = 8

func buildUserPrompt(task string, obs Observation, history []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: %s\n\n", task)

	fmt.Fprintf(&b, "Current page:\nURL: %s\nTitle: %s\n", valueOr(obs.URL, "(blank)"), valueOr(obs.Title, "(none)"))
	if obs.Text != "" {
		fmt.Fprintf(&b, "Text: %s\n", obs.Text)
	}

	if len(history) > 0 {
		start := 0
		if len(history) > historyWindow {
			start = len(history) - historyWindow
		}
		b.WriteString("\nRecent steps:\n")
		for i, entry := range history[start:] {
			fmt.Fprintf(&b, "%d. %s\n", start+i+1, entry)
		}
	}

	b.WriteString("\nNext action (JSON only):")
	return b.String()
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
