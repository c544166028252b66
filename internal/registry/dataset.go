package registry

import (
	"slices"
	"strings"
)

// OutputFormat says which download formats a dataset offers.
type OutputFormat string

const (
	OutputJSON            OutputFormat = "json"
	OutputJSONOrDataframe OutputFormat = "json or dataframe"
)

// OffersDataframe reports whether the dataset can be downloaded as a table.
func (f OutputFormat) OffersDataframe() bool {
	return strings.Contains(string(f), "dataframe")
}

// Dataset is one GET endpoint of the API. Records are built once by Build and
// never modified afterwards.
type Dataset struct {
	Name            string       `json:"name"`
	Code            string       `json:"code"`
	Operation       string       `json:"operation"`
	Category        string       `json:"category"`
	Subcategory     string       `json:"subcategory,omitempty"`
	Description     string       `json:"description"`
	Path            string       `json:"path"`
	RequiredCols    []string     `json:"requiredCols"`
	OptionalCols    []string     `json:"optionalCols"`
	DatetimeCols    []string     `json:"datetimeCols"`
	MaxDays         *int         `json:"maxDaysDataLimit,omitempty"`
	ExampleResponse any          `json:"exampleResponse,omitempty"`
	OutputFormat    OutputFormat `json:"outputFormat"`
}

// AllowedCols returns required then optional parameter names.
func (d Dataset) AllowedCols() []string {
	allowed := make([]string, 0, len(d.RequiredCols)+len(d.OptionalCols))
	allowed = append(allowed, d.RequiredCols...)
	return append(allowed, d.OptionalCols...)
}

func (d Dataset) IsDatetime(name string) bool {
	return slices.Contains(d.DatetimeCols, name)
}

// IsPathTemplated reports whether parameters are sent in the path instead of the query.
func (d Dataset) IsPathTemplated() bool {
	return strings.Contains(d.Path, "{")
}
