package response

import "elexon/internal/registry"

// DatasetSummary is the response for a dataset in list views
type DatasetSummary struct {
	Operation    string                `json:"operation"`
	Name         string                `json:"name"`
	Code         string                `json:"code"`
	Category     string                `json:"category"`
	Subcategory  string                `json:"subcategory"`
	Path         string                `json:"path"`
	MaxDays      *int                  `json:"maxDays,omitempty"`
	OutputFormat registry.OutputFormat `json:"outputFormat"`
}

// DatasetWithDetails is the full response for a single dataset
type DatasetWithDetails struct {
	DatasetSummary
	Description     string   `json:"description"`
	RequiredCols    []string `json:"requiredCols"`
	OptionalCols    []string `json:"optionalCols"`
	DatetimeCols    []string `json:"datetimeCols"`
	ExampleResponse any      `json:"exampleResponse"`
}

// DatasetList wraps the summaries with the categories present
type DatasetList struct {
	Data       []DatasetSummary `json:"data"`
	Total      int              `json:"total"`
	Categories []string         `json:"categories"`
}

// DownloadResult holds the rows of a df download or the data of a json one
type DownloadResult struct {
	DownloadID string           `json:"downloadId"`
	Operation  string           `json:"operation"`
	Format     string           `json:"format"`
	Chunks     int              `json:"chunks"`
	RowCount   int              `json:"rowCount"`
	Columns    []string         `json:"columns,omitempty"`
	Rows       []map[string]any `json:"rows,omitempty"`
	Data       any              `json:"data,omitempty"`
}

// DatasetHelp is the description of a dataset as the API documents it
type DatasetHelp struct {
	Alias string `json:"alias"`
	Help  string `json:"help"`
}
