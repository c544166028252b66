package registry

import (
	"regexp"
	"strconv"
	"strings"

	"elexon/internal/openapi"
)

var (
	// trailing "(...)" group without nested parentheses or brackets
	codePattern = regexp.MustCompile(`\(([^()\[\]]*)\)$`)

	// Only the "maximum data output range of N days" phrasing is recognised;
	// looser "max N day" mentions in descriptions are not constraints.
	maxDaysPattern = regexp.MustCompile(`(?i)maximum data output range of (\d+) days`)

	codeSeparatorPattern = regexp.MustCompile(`\s*,\s*`)
)

// ExtractNameAndCode splits "Market Index Data (MID)" into its name and code.
// The code is empty when the summary has no trailing group.
func ExtractNameAndCode(summary string) (name string, code string) {
	loc := codePattern.FindStringSubmatchIndex(summary)
	if loc == nil || loc[3] == loc[2] {
		return summary, ""
	}
	return strings.TrimSpace(summary[:loc[0]]), summary[loc[2]:loc[3]]
}

// ExtractParameters sorts parameter names into required and optional lists and
// collects the names whose schema format is a date or date-time. A name is
// recorded once, at its first occurrence.
func ExtractParameters(params []openapi.Parameter) (required, optional, datetime []string) {
	required, optional, datetime = []string{}, []string{}, []string{}
	seen := make(map[string]bool, len(params))

	for _, p := range params {
		if p.Name == "" || seen[p.Name] {
			continue
		}
		seen[p.Name] = true

		if p.Schema.Format == "date" || p.Schema.Format == "date-time" {
			datetime = append(datetime, p.Name)
		}
		if p.Required {
			required = append(required, p.Name)
		} else {
			optional = append(optional, p.Name)
		}
	}
	return required, optional, datetime
}

// ExtractMaxDays returns the documented maximum query window, or nil.
func ExtractMaxDays(description string) *int {
	m := maxDaysPattern.FindStringSubmatch(description)
	if m == nil {
		return nil
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &days
}

// ExtractResponseStructure returns the records of the 200 JSON example: the
// value under "data" when the example is an object holding one, else the
// example itself. Nil when there is no example.
func ExtractResponseStructure(op *openapi.Operation) any {
	example, ok := op.Example("200", "application/json")
	if !ok {
		return nil
	}
	if m, ok := example.(map[string]any); ok {
		if data, ok := m["data"]; ok {
			return data
		}
	}
	return example
}

// ClassifyOutputFormat decides whether an example payload can become a table.
func ClassifyOutputFormat(example any) OutputFormat {
	switch v := example.(type) {
	case nil:
		return OutputJSON
	case map[string]any:
		if len(v) == 0 {
			return OutputJSON
		}
		return OutputJSONOrDataframe
	case []any:
		if len(v) == 0 {
			return OutputJSON
		}
		if _, ok := v[0].(map[string]any); ok {
			return OutputJSONOrDataframe
		}
		return OutputJSON
	default:
		return OutputJSON
	}
}

func normalizeCode(code string) string {
	return codeSeparatorPattern.ReplaceAllString(code, "_")
}

// splitCategory takes the first two path segments.
func splitCategory(path string) (category, subcategory string) {
	parts := strings.Split(path, "/")
	if len(parts) > 1 {
		category = parts[1]
	}
	if len(parts) > 2 {
		subcategory = parts[2]
	}
	return category, subcategory
}
