package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/floworc/floworc/types"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// renderPrompt substitutes {{user_data.<key>}} and {{steps.<n>}}
// placeholders in the template. Any placeholder that cannot be resolved
// is an error: a workflow must never run with silently missing data.
func renderPrompt(template string, userData map[string]any, prior []types.StepResult) (string, error) {
	var renderErr error
	rendered := placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		if renderErr != nil {
			return match
		}
		key := strings.TrimSpace(placeholderRe.FindStringSubmatch(match)[1])

		value, err := resolvePlaceholder(key, userData, prior)
		if err != nil {
			renderErr = err
			return match
		}
		return value
	})
	if renderErr != nil {
		return "", renderErr
	}
	return rendered, nil
}

func resolvePlaceholder(key string, userData map[string]any, prior []types.StepResult) (string, error) {
	switch {
	case strings.HasPrefix(key, "user_data."):
		name := strings.TrimPrefix(key, "user_data.")
		value, ok := userData[name]
		if !ok {
			return "", fmt.Errorf("placeholder {{%s}}: no such key in user data", key)
		}
		return stringify(value), nil

	case strings.HasPrefix(key, "steps."):
		raw := strings.TrimPrefix(key, "steps.")
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return "", fmt.Errorf("placeholder {{%s}}: step index must be a number", key)
		}
		if idx < 0 || idx >= len(prior) {
			return "", fmt.Errorf("placeholder {{%s}}: step %d has not completed", key, idx)
		}
		return prior[idx].Output, nil

	default:
		return "", fmt.Errorf("placeholder {{%s}}: unknown namespace", key)
	}
}

func stringify(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", typed)
	}
}
