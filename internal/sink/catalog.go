package sink

import (
	"context"

	"github.com/metaharbor/ingest/internal/catalog"
)

// Catalog forwards records to the metadata store's REST API.
type Catalog struct {
	client *catalog.Client
}

var _ Sink = (*Catalog)(nil)

// NewCatalog wraps a metadata store client as a sink.
func NewCatalog(client *catalog.Client) *Catalog {
	return &Catalog{client: client}
}

func (c *Catalog) WriteTable(ctx context.Context, rec catalog.TableRecord) error {
	return c.client.CreateOrUpdateTable(ctx, rec)
}

func (c *Catalog) Close() error { return nil }
