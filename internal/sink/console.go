package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/metaharbor/ingest/internal/catalog"
)

// Console writes each record to a writer as a JSON or YAML document.
type Console struct {
	w      io.Writer
	format string
}

var _ Sink = (*Console)(nil)

// NewConsole builds a console sink. Format is json or yaml.
func NewConsole(w io.Writer, format string) (*Console, error) {
	if format != "json" && format != "yaml" {
		return nil, fmt.Errorf("unsupported console format %q (json or yaml)", format)
	}
	return &Console{w: w, format: format}, nil
}

func (c *Console) WriteTable(ctx context.Context, rec catalog.TableRecord) error {
	switch c.format {
	case "yaml":
		if _, err := io.WriteString(c.w, "---\n"); err != nil {
			return err
		}
		enc := yaml.NewEncoder(c.w)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding %s as yaml: %w", rec.FullyQualifiedName(), err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(c.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding %s as json: %w", rec.FullyQualifiedName(), err)
		}
		return nil
	}
}

func (c *Console) Close() error { return nil }
