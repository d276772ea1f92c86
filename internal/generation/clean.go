package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

var (
	controlStripper = strings.NewReplacer("\n", "", "\t", "", "\r", "")
	trailingCommas  = strings.NewReplacer(",]", "]", ",}", "}")
)

// CleanJSONResponse extracts the JSON object from a model answer. Markdown
// fences and surrounding prose are dropped; if the object still does not
// parse, control whitespace and trailing commas are removed and it is tried
// once more. An answer that cannot be repaired yields ErrInvalidResponse.
func CleanJSONResponse(response string) (string, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		response = response[start : end+1]
	}

	if json.Valid([]byte(response)) {
		return response, nil
	}

	repaired := trailingCommas.Replace(controlStripper.Replace(response))
	if json.Valid([]byte(repaired)) {
		return repaired, nil
	}
	return "", fmt.Errorf("%w: response is not valid JSON", ErrInvalidResponse)
}
