package prefillstore

import (
	"database/sql"
	"time"

	"github.com/Ramsey-B/fern/pkg/database"
)

// PrefillStoreRow is one persisted value. Values are kept as text so that a
// corrupt payload can still be read back and reported by the caller.
type PrefillStoreRow struct {
	Key       sql.NullString `db:"key"`
	Value     sql.NullString `db:"value"`
	CreatedTS sql.NullTime   `db:"created_at"`
	UpdatedTS sql.NullTime   `db:"updated_at"`
}

const (
	prefillStoreTable = "prefill_store"
)

var prefillStoreStruct = database.NewStruct(new(PrefillStoreRow))

func newRow(key, value string, now time.Time) *PrefillStoreRow {
	return &PrefillStoreRow{
		Key:       sql.NullString{String: key, Valid: key != ""},
		Value:     sql.NullString{String: value, Valid: true},
		CreatedTS: sql.NullTime{Time: now, Valid: true},
		UpdatedTS: sql.NullTime{Time: now, Valid: true},
	}
}
