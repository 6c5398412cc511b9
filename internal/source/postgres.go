// Package source loads the normalized source collections into the document
// store, either straight from the relational database they live in or from
// JSON-lines dump files.
package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Querier is the subset of pgxpool.Pool the exporter needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Sink receives exported rows, one source collection at a time. Each
// collection is dropped before its rows are inserted, so an import always
// reflects the relational side exactly.
type Sink interface {
	DropSource(ctx context.Context, coll string) error
	InsertSourceRows(ctx context.Context, coll string, rows []interface{}) error
}

// Table maps a relational table (without its configured prefix) to the
// source collection it feeds.
type Table struct {
	Name       string
	Collection string
}

// Tables lists every normalized source table the pipeline consumes.
var Tables = []Table{
	{Name: "orders", Collection: "orders"},
	{Name: "customers", Collection: "customers"},
	{Name: "products", Collection: "products"},
	{Name: "product_category_name_translation", Collection: "product_category_name_translation"},
	{Name: "order_items", Collection: "order_items"},
	{Name: "order_payments", Collection: "order_payments"},
	{Name: "order_reviews", Collection: "order_reviews"},
	{Name: "sellers", Collection: "sellers"},
	{Name: "geolocation", Collection: "geolocation"},
	{Name: "leads_qualified", Collection: "leads_qualified"},
	{Name: "leads_closed", Collection: "leads_closed"},
}

// Exporter streams relational rows into a Sink as JSON documents.
type Exporter struct {
	db     Querier
	prefix string
	batch  int
}

// NewExporter creates an Exporter. prefix is prepended to each table name.
func NewExporter(db Querier, prefix string, batchSize int) *Exporter {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Exporter{db: db, prefix: prefix, batch: batchSize}
}

// Export streams every source table into the sink.
func (e *Exporter) Export(ctx context.Context, sink Sink) error {
	return e.ExportTables(ctx, sink, Tables)
}

// ExportTables streams the given tables into the sink.
func (e *Exporter) ExportTables(ctx context.Context, sink Sink, tables []Table) error {
	for _, t := range tables {
		n, err := e.exportTable(ctx, sink, t)
		if err != nil {
			return eris.Wrapf(err, "source: export %s", t.Name)
		}
		zap.L().Info("source: table exported",
			zap.String("table", e.prefix+t.Name),
			zap.String("collection", t.Collection),
			zap.Int("rows", n),
		)
	}
	return nil
}

func (e *Exporter) exportTable(ctx context.Context, sink Sink, t Table) (int, error) {
	if err := sink.DropSource(ctx, t.Collection); err != nil {
		return 0, err
	}

	// row_to_json keeps the relational types intact: numerics stay
	// numbers, text stays text. The geo validity check depends on that.
	sql := fmt.Sprintf("SELECT row_to_json(x) FROM %s x", pgx.Identifier{e.prefix + t.Name}.Sanitize())
	rows, err := e.db.Query(ctx, sql)
	if err != nil {
		return 0, eris.Wrap(err, "source: query")
	}
	defer rows.Close()

	total := 0
	batch := make([]interface{}, 0, e.batch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.InsertSourceRows(ctx, t.Collection, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return total, eris.Wrap(err, "source: scan row")
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return total, eris.Wrap(err, "source: decode row")
		}
		batch = append(batch, doc)
		if len(batch) >= e.batch {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return total, eris.Wrap(err, "source: iterate rows")
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
