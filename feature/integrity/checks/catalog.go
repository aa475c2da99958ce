package checks

import (
	"context"
	"errors"

	"purchase-manager/feature/catalog"
)

// CatalogFetcher returns the published catalog.
type CatalogFetcher interface {
	Fetch(ctx context.Context) (*catalog.Document, error)
}

// CatalogReport describes how the published catalog covers the configured products.
type CatalogReport struct {
	Published bool     `json:"published"`
	Products  int      `json:"products"`
	Missing   []string `json:"missing"`
}

// CheckCatalog lists the configured product ids the published catalog lacks.
// An unpublished catalog is reported, not returned as an error.
func CheckCatalog(ctx context.Context, fetcher CatalogFetcher, productIDs []string) (*CatalogReport, error) {
	doc, err := fetcher.Fetch(ctx)
	if errors.Is(err, catalog.ErrNotPublished) {
		return &CatalogReport{Missing: append([]string{}, productIDs...)}, nil
	}
	if err != nil {
		return nil, err
	}

	listed := make(map[string]struct{}, len(doc.Products))
	for _, p := range doc.Products {
		listed[p.ID] = struct{}{}
	}

	report := &CatalogReport{Published: true, Products: len(doc.Products), Missing: []string{}}
	for _, id := range productIDs {
		if _, ok := listed[id]; !ok {
			report.Missing = append(report.Missing, id)
		}
	}
	return report, nil
}
