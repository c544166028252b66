package service

import (
	"elexon"
	"elexon/internal/registry"

	"github.com/rs/zerolog"
)

// DatasetService answers catalogue queries against the registry.
type DatasetService struct {
	registry *registry.Registry
	logger   zerolog.Logger
}

func NewDatasetService(reg *registry.Registry) *DatasetService {
	return &DatasetService{
		registry: reg,
		logger:   elexon.Logger,
	}
}

// FindAll returns the datasets of a category, every dataset when category is empty
func (s *DatasetService) FindAll(category string) []registry.Dataset {
	return s.registry.Filter(category)
}

// FindByAlias resolves an operation id, name or code to its dataset
func (s *DatasetService) FindByAlias(alias string) (registry.Dataset, error) {
	ds, err := s.registry.Lookup(alias)
	if err != nil {
		s.logger.Debug().Str("alias", alias).Msg("Dataset alias not found")
		return registry.Dataset{}, err
	}
	return ds, nil
}

// Help returns the description of a dataset
func (s *DatasetService) Help(alias string) (string, error) {
	return s.registry.Help(alias)
}

func (s *DatasetService) Categories() []string {
	return s.registry.Categories()
}

func (s *DatasetService) Count() int {
	return s.registry.Len()
}
