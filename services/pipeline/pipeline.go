// Package pipeline fetches raw quarterly archives and turns them into
// processed jsonl partitions. every step is idempotent (existence check
// before write) and leaves no partial artifact behind on failure, so a
// run can always be re-invoked safely after an error.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"indego-backend/lib/blobstore"
	"indego-backend/lib/catalog"
	"indego-backend/lib/telemetry"
	"indego-backend/lib/trips"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("indego.services.pipeline")

var ErrFetch = fmt.Errorf("archive download failed")

type Pipeline struct {
	catalog   catalog.Catalog
	raw       blobstore.Store
	processed blobstore.Store
	http      *resty.Client
}

type Options struct {
	Catalog   catalog.Catalog
	Raw       blobstore.Store
	Processed blobstore.Store
	// defaults to a fresh resty client
	Http *resty.Client
}

func New(opts Options) Pipeline {
	client := opts.Http
	if client == nil {
		client = resty.New()
	}
	client.SetHeader("user-agent", "Mozilla/5.0")
	telemetry.InstrumentResty(client, "indego.services.pipeline.http")
	return Pipeline{
		catalog:   opts.Catalog,
		raw:       opts.Raw,
		processed: opts.Processed,
		http:      client,
	}
}

// FetchArchive downloads one discovered archive into the raw store under
// its label-derived key. a no-op when the key already exists.
func (p Pipeline) FetchArchive(ctx context.Context, entry catalog.Entry) error {
	ctx, span := tracer.Start(ctx, "FetchArchive")
	defer span.End()

	year, quarter, err := ParseLabel(entry.Label)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	key := RawKey(year, quarter)

	exists, err := p.raw.Exists(ctx, key)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if exists {
		slog.Info("raw archive already exists, skipping", "label", entry.Label, "key", key)
		return nil
	}

	slog.Info("downloading archive", "label", entry.Label, "url", entry.Url)

	res, err := p.http.R().
		SetContext(ctx).
		Get(entry.Url)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("%w: %s: status %d", ErrFetch, entry.Url, res.StatusCode())
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = p.raw.Write(ctx, key, bytes.NewReader(res.Body()))
	if err != nil {
		// the store must never retain a truncated archive
		deleteErr := p.raw.Delete(ctx, key)
		if deleteErr != nil {
			slog.Error("failed to clean up partial archive", "key", key, "err", deleteErr)
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	slog.Info("saved raw archive", "key", key)
	return nil
}

// ProcessArchive normalizes one stored raw archive into its jsonl
// partition. a no-op when the partition already exists. the partition is
// deleted again if normalization or the write fails partway.
func (p Pipeline) ProcessArchive(ctx context.Context, rawKey string) error {
	ctx, span := tracer.Start(ctx, "ProcessArchive")
	defer span.End()

	year, quarter, err := ParseRawKey(rawKey)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	key := ProcessedKey(year, quarter)

	exists, err := p.processed.Exists(ctx, key)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if exists {
		slog.Info("processed partition already exists, skipping", "key", key)
		return nil
	}

	slog.Info("processing archive", "raw", rawKey, "key", key)

	err = p.writePartition(ctx, rawKey, key)
	if err != nil {
		deleteErr := p.processed.Delete(ctx, key)
		if deleteErr != nil {
			slog.Error("failed to clean up partial partition", "key", key, "err", deleteErr)
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	slog.Info("saved processed partition", "key", key)
	return nil
}

func (p Pipeline) writePartition(ctx context.Context, rawKey, processedKey string) error {
	r, err := p.raw.Open(ctx, rawKey)
	if err != nil {
		return err
	}
	defer r.Close()

	archive, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	records, err := trips.Normalize(archive)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", rawKey, err)
	}

	var buf bytes.Buffer
	err = trips.WriteJSONL(&buf, records)
	if err != nil {
		return err
	}
	return p.processed.Write(ctx, processedKey, &buf)
}

// FetchAll discovers the published archives and fetches each one in
// turn. a discovery failure aborts the run, per-item failures are
// collected and the remaining items still processed.
func (p Pipeline) FetchAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "FetchAll")
	defer span.End()

	entries, err := p.catalog.Discover(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	slog.Info("discovered archives", "count", len(entries))

	var errlist []error
	for _, entry := range entries {
		err := p.FetchArchive(ctx, entry)
		if err != nil {
			slog.Error("failed to fetch archive", "label", entry.Label, "err", err)
			errlist = append(errlist, fmt.Errorf("fetch %q: %w", entry.Label, err))
		}
	}
	return errors.Join(errlist...)
}

// ProcessAll rescans the raw store and processes whatever archives are
// there, independent of discovery. same continue-on-item-failure policy
// as FetchAll.
func (p Pipeline) ProcessAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ProcessAll")
	defer span.End()

	keys, err := p.raw.List(ctx, "trips/")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var errlist []error
	for _, key := range keys {
		if !strings.HasSuffix(key, ".zip") {
			continue
		}
		err := p.ProcessArchive(ctx, key)
		if err != nil {
			slog.Error("failed to process archive", "raw", key, "err", err)
			errlist = append(errlist, fmt.Errorf("process %q: %w", key, err))
		}
	}
	return errors.Join(errlist...)
}

// Run is the full pipeline: fetch everything, then process everything.
// only an unusable catalog stops the run early, failed items are
// reported at the end.
func (p Pipeline) Run(ctx context.Context) error {
	fetchErr := p.FetchAll(ctx)
	if errors.Is(fetchErr, catalog.ErrDiscovery) {
		return fetchErr
	}
	processErr := p.ProcessAll(ctx)
	return errors.Join(fetchErr, processErr)
}
