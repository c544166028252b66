package request

// DownloadDataset is the request for downloading a dataset
type DownloadDataset struct {
	DownloadID    string         `json:"downloadId" validate:"omitempty,uuid"`
	Format        string         `json:"format" validate:"omitempty,oneof=df json"`
	DateChunkCols []string       `json:"dateChunkCols" validate:"max=2,dive,required"`
	Params        map[string]any `json:"params"`
	Progress      bool           `json:"progress"`
}
