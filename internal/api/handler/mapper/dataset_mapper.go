package mapper

import (
	"elexon/internal/api/handler/request"
	"elexon/internal/api/handler/response"
	"elexon/internal/api/service"
	"elexon/internal/params"
	"elexon/internal/registry"
)

// DatasetMapper handles mapping between registry records, download results and DTOs
type DatasetMapper interface {
	ToDatasetSummary(d registry.Dataset) response.DatasetSummary
	ToDatasetSummaries(datasets []registry.Dataset) []response.DatasetSummary
	ToDatasetWithDetails(d registry.Dataset) response.DatasetWithDetails
	ToDownloadRequest(alias string, req request.DownloadDataset) (service.Request, error)
	ToDownloadResult(res *service.Result) response.DownloadResult
}

type DatasetMapperImpl struct{}

func NewDatasetMapper() DatasetMapper {
	return &DatasetMapperImpl{}
}

func (m *DatasetMapperImpl) ToDatasetSummary(d registry.Dataset) response.DatasetSummary {
	return response.DatasetSummary{
		Operation:    d.Operation,
		Name:         d.Name,
		Code:         d.Code,
		Category:     d.Category,
		Subcategory:  d.Subcategory,
		Path:         d.Path,
		MaxDays:      d.MaxDays,
		OutputFormat: d.OutputFormat,
	}
}

func (m *DatasetMapperImpl) ToDatasetSummaries(datasets []registry.Dataset) []response.DatasetSummary {
	result := make([]response.DatasetSummary, len(datasets))
	for i, d := range datasets {
		result[i] = m.ToDatasetSummary(d)
	}
	return result
}

func (m *DatasetMapperImpl) ToDatasetWithDetails(d registry.Dataset) response.DatasetWithDetails {
	return response.DatasetWithDetails{
		DatasetSummary:  m.ToDatasetSummary(d),
		Description:     d.Description,
		RequiredCols:    d.RequiredCols,
		OptionalCols:    d.OptionalCols,
		DatetimeCols:    d.DatetimeCols,
		ExampleResponse: d.ExampleResponse,
	}
}

func (m *DatasetMapperImpl) ToDownloadRequest(alias string, req request.DownloadDataset) (service.Request, error) {
	bag, err := params.FromMap(req.Params)
	if err != nil {
		return service.Request{}, err
	}
	return service.Request{
		DownloadID:    req.DownloadID,
		Alias:         alias,
		Format:        service.Format(req.Format),
		Progress:      req.Progress,
		DateChunkCols: req.DateChunkCols,
		Params:        bag,
	}, nil
}

func (m *DatasetMapperImpl) ToDownloadResult(res *service.Result) response.DownloadResult {
	out := response.DownloadResult{
		DownloadID: res.DownloadID,
		Operation:  res.Operation,
		Format:     string(res.Format),
		Chunks:     res.Chunks,
		RowCount:   res.RowCount(),
	}
	if res.Frame != nil {
		out.Columns = res.Frame.Columns
		out.Rows = res.Frame.Rows
		return out
	}
	out.Data = res.Data
	return out
}
