package registry

import (
	"context"
	"fmt"
	"strings"

	"elexon"
	"elexon/internal/errs"
	"elexon/internal/openapi"
)

const obsoleteMarker = "This endpoint is obsolete"

// Build derives the dataset catalogue from a parsed specification. Paths are
// visited in document order and the resulting order is kept.
func Build(doc *openapi.Document) (*Registry, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", errs.ErrInvalidSpec)
	}

	r := &Registry{
		datasets:    make([]Dataset, 0, len(doc.Paths)),
		byOperation: make(map[string]int, len(doc.Paths)),
	}
	codes := make(map[string]bool, len(doc.Paths))
	skipped := 0

	for _, item := range doc.Paths {
		op := item.Get
		if op == nil {
			continue
		}
		if strings.Contains(item.Path, "stream") {
			skipped++
			continue
		}

		name, code := ExtractNameAndCode(op.Summary)
		if strings.Contains(name, obsoleteMarker) {
			skipped++
			continue
		}

		if op.OperationID == "" {
			return nil, fmt.Errorf("%w: path %s has no operationId", errs.ErrInvalidSpec, item.Path)
		}
		if _, dup := r.byOperation[op.OperationID]; dup {
			return nil, fmt.Errorf("%w: duplicate operationId %s", errs.ErrInvalidSpec, op.OperationID)
		}

		code = normalizeCode(code)
		if code == "" || codes[code] {
			code = normalizeCode(op.OperationID)
		}
		if codes[code] {
			return nil, fmt.Errorf("%w: code %s of %s is already taken", errs.ErrInvalidSpec, code, op.OperationID)
		}
		codes[code] = true

		required, optional, datetime := ExtractParameters(op.Parameters)
		category, subcategory := splitCategory(item.Path)
		example := ExtractResponseStructure(op)

		r.byOperation[op.OperationID] = len(r.datasets)
		r.datasets = append(r.datasets, Dataset{
			Name:            name,
			Code:            code,
			Operation:       op.OperationID,
			Category:        category,
			Subcategory:     subcategory,
			Description:     strings.ReplaceAll(op.Description, "\n", " "),
			Path:            item.Path,
			RequiredCols:    required,
			OptionalCols:    optional,
			DatetimeCols:    datetime,
			MaxDays:         ExtractMaxDays(op.Description),
			ExampleResponse: example,
			OutputFormat:    ClassifyOutputFormat(example),
		})
	}

	elexon.Logger.Info().
		Str("title", doc.Title).
		Str("version", doc.Version).
		Int("datasets", len(r.datasets)).
		Int("skipped", skipped).
		Msg("Dataset registry built")

	return r, nil
}

// Load reads the specification at source and builds the registry from it.
func Load(ctx context.Context, source string) (*Registry, error) {
	doc, err := openapi.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}
