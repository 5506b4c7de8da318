package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/querydeck/querydeck/internal/config"
	"github.com/querydeck/querydeck/internal/export"
	"github.com/querydeck/querydeck/internal/observability"
	s3store "github.com/querydeck/querydeck/internal/storage/s3"
)

func main() {
	prefix := flag.String("prefix", "", "object key prefix, overrides QUERYDECK_EXPORT_PREFIX")
	timeout := flag.Duration("timeout", 60*time.Second, "overall export timeout")
	flag.Parse()

	cfg, err := config.LoadFromEnv("querydeck-export")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Export.Endpoint == "" {
		fmt.Fprintln(os.Stderr, "QUERYDECK_EXPORT_ENDPOINT is required")
		os.Exit(1)
	}
	if cfg.Export.Bucket == "" {
		fmt.Fprintln(os.Stderr, "QUERYDECK_EXPORT_BUCKET is required")
		os.Exit(1)
	}

	keyPrefix := cfg.Export.Prefix
	if *prefix != "" {
		keyPrefix = *prefix
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	objectStore, err := s3store.New(ctx, s3store.Config{
		Endpoint:         cfg.Export.Endpoint,
		Region:           cfg.Export.Region,
		Bucket:           cfg.Export.Bucket,
		AccessKeyID:      cfg.Export.AccessKeyID,
		SecretAccessKey:  cfg.Export.SecretAccessKey,
		UseSSL:           cfg.Export.UseSSL,
		AutoCreateBucket: cfg.Export.AutoCreateBucket,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "object store error: %v\n", err)
		os.Exit(1)
	}

	svc := &export.Service{
		Store:  objectStore,
		Prefix: keyPrefix,
		Logger: observability.NewLogger(cfg, os.Stderr),
	}
	summary, err := svc.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}

	for _, obj := range summary.Objects {
		fmt.Printf("uploaded %s (%d records, %d bytes)\n", obj.Key, obj.Records, obj.SizeBytes)
	}
	fmt.Printf("exported %d object(s), %d bytes total in %s\n", len(summary.Objects), summary.TotalBytes, summary.Duration.Round(time.Millisecond))
}
