package trace

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// extract reads the value at a JSONPath-style expression ($.a.b[0].c) from
// a JSON document.
func extract(body []byte, path string) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("empty JSON body")
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("body is not valid JSON")
	}

	result := gjson.GetBytes(body, toGjsonPath(path))
	if !result.Exists() || result.Type == gjson.Null {
		return "", fmt.Errorf("path not found: %s", path)
	}
	return result.String(), nil
}

// toGjsonPath converts $.users[0].name into users.0.name
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	// bracketed keys: ['name'] and ["name"]
	path = strings.NewReplacer(`['`, ".", `']`, "", `["`, ".", `"]`, "").Replace(path)
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)

	return strings.TrimPrefix(path, ".")
}
