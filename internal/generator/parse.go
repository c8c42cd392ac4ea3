package generator

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// StripFences removes a markdown code-fence wrapper from generator output
func StripFences(value string) string {
	output := strings.TrimSpace(value)
	if strings.HasPrefix(output, "```") {
		output = fenceOpen.ReplaceAllString(output, "")
		output = fenceClose.ReplaceAllString(output, "")
	}
	return strings.TrimSpace(output)
}

// Parse turns raw generator text into a JSON object, trying progressively
// harder salvage stages: strict parse, then the substring between the first
// "{" and the last "}", then mechanical repair. Returns nil when nothing
// usable remains.
func Parse(value string) map[string]any {
	if parsed := parseObject(value); parsed != nil {
		return parsed
	}

	start := strings.Index(value, "{")
	end := strings.LastIndex(value, "}")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	sliced := value[start : end+1]
	if parsed := parseObject(sliced); parsed != nil {
		return parsed
	}

	repaired, err := jsonrepair.JSONRepair(sliced)
	if err != nil {
		return nil
	}
	return parseObject(repaired)
}

func parseObject(value string) map[string]any {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		return nil
	}
	return parsed
}
