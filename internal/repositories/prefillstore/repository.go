package prefillstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Repository is a prefill.Backend stored in PostgreSQL.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new prefill store repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "PrefillStoreRepository.Get")
	defer span.End()

	start := time.Now()
	defer func() { metrics.RecordBackendOperation("postgres", "get", time.Since(start).Seconds()) }()

	query, args := selectQuery(key)

	var row PrefillStoreRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("key", key).Error("error getting prefill store value")
		return "", false, fmt.Errorf("error getting prefill store value: %w", err)
	}

	return row.Value.String, true, nil
}

func (r *Repository) Set(ctx context.Context, key, value string) error {
	ctx, span := tracing.StartSpan(ctx, "PrefillStoreRepository.Set")
	defer span.End()

	start := time.Now()
	defer func() { metrics.RecordBackendOperation("postgres", "set", time.Since(start).Seconds()) }()

	query, args := upsertQuery(key, value, time.Now().UTC())

	return r.db.InTx(ctx, func(ctx context.Context, tx database.Tx) error {
		r.logger.WithContext(ctx).WithField("key", key).Debug("Upserting prefill store value")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("key", key).Error("error upserting prefill store value")
			return fmt.Errorf("error upserting prefill store value: %w", err)
		}
		return nil
	})
}

func selectQuery(key string) (string, []any) {
	return prefillStoreStruct.SelectBy(prefillStoreTable, "\"key\"", key)
}

// upsertQuery inserts the value or, when the key exists, replaces it and
// bumps updated_at while keeping created_at.
func upsertQuery(key, value string, now time.Time) (string, []any) {
	return prefillStoreStruct.Upsert(
		prefillStoreTable,
		newRow(key, value, now),
		[]string{"\"key\""},
		[]string{"value"},
		map[string]any{"updated_at": now},
	)
}
