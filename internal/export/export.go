// Package export snapshots the seeded demo tables to an object store as
// parquet files, so the dataset can be inspected outside the service.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/querydeck/querydeck/internal/dataset"
	"github.com/querydeck/querydeck/internal/observability"
	"github.com/querydeck/querydeck/internal/storage"
)

const parquetContentType = "application/vnd.apache.parquet"

type ObjectSummary struct {
	TableName string `json:"table_name"`
	Key       string `json:"key"`
	Records   int    `json:"records"`
	SizeBytes int64  `json:"size_bytes"`
}

type Summary struct {
	Objects    []ObjectSummary `json:"objects"`
	TotalBytes int64           `json:"total_bytes"`
	Duration   time.Duration   `json:"-"`
}

type Service struct {
	Store  storage.ObjectStore
	Prefix string
	Logger *slog.Logger
}

// Run encodes every demo table and uploads one parquet object per table.
// The snapshot always reflects the canonical seed rows, not the contents
// of a live backend.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	if s.Store == nil {
		return Summary{}, fmt.Errorf("object store is required")
	}

	started := time.Now()
	summary := Summary{Objects: make([]ObjectSummary, 0, len(dataset.TableNames()))}

	customers, err := s.upload(ctx, "customers", dataset.Customers())
	if err != nil {
		return Summary{}, err
	}
	summary.Objects = append(summary.Objects, customers)

	orders, err := s.upload(ctx, "orders", dataset.Orders())
	if err != nil {
		return Summary{}, err
	}
	summary.Objects = append(summary.Objects, orders)

	products, err := s.upload(ctx, "products", dataset.Products())
	if err != nil {
		return Summary{}, err
	}
	summary.Objects = append(summary.Objects, products)

	for _, obj := range summary.Objects {
		summary.TotalBytes += obj.SizeBytes
	}
	summary.Duration = time.Since(started)

	observability.ObserveExport(len(summary.Objects), summary.TotalBytes)
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "dataset export finished",
			slog.Int("objects", len(summary.Objects)),
			slog.Int64("total_bytes", summary.TotalBytes),
			slog.Duration("duration", summary.Duration),
		)
	}
	return summary, nil
}

func (s *Service) upload(ctx context.Context, table string, rows any) (ObjectSummary, error) {
	var (
		data    []byte
		records int
		err     error
	)
	switch typed := rows.(type) {
	case []dataset.Customer:
		data, err = encodeParquet(typed)
		records = len(typed)
	case []dataset.Order:
		data, err = encodeParquet(typed)
		records = len(typed)
	case []dataset.Product:
		data, err = encodeParquet(typed)
		records = len(typed)
	default:
		return ObjectSummary{}, fmt.Errorf("unsupported table rows for %q", table)
	}
	if err != nil {
		return ObjectSummary{}, fmt.Errorf("encode %s: %w", table, err)
	}

	key := path.Join("datasets", table+".parquet")
	if s.Prefix != "" {
		key = path.Join(s.Prefix, key)
	}
	info, err := s.Store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: parquetContentType})
	if err != nil {
		return ObjectSummary{}, fmt.Errorf("upload %s: %w", table, err)
	}
	return ObjectSummary{TableName: table, Key: info.Key, Records: records, SizeBytes: info.Size}, nil
}

func encodeParquet[T any](rows []T) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("rows are required")
	}
	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[T](buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
