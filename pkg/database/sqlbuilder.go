package database

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// Struct builds PostgreSQL statements from a row type's `db` tags.
type Struct struct {
	s *sqlbuilder.Struct
}

func NewStruct(row any) *Struct {
	return &Struct{s: sqlbuilder.NewStruct(row).For(sqlbuilder.PostgreSQL)}
}

// SelectBy selects at most one row of table whose column equals value.
func (s *Struct) SelectBy(table, column string, value any) (string, []any) {
	sb := s.s.SelectFrom(table)
	sb.Where(sb.Equal(column, value))
	sb.Limit(1)

	return sb.Build()
}

// Upsert inserts row into table. On a conflict over the given columns the
// columns in refresh take the proposed values and set supplies fixed ones;
// every other column keeps what is stored.
func (s *Struct) Upsert(table string, row any, conflict []string, refresh []string, set map[string]any) (string, []any) {
	ib := s.s.InsertInto(table, row)

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	assignments := make([]string, 0, len(refresh)+len(set))
	for _, column := range refresh {
		assignments = append(assignments, ub.Assign(column, sqlbuilder.Raw("EXCLUDED."+column)))
	}

	columns := make([]string, 0, len(set))
	for column := range set {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	for _, column := range columns {
		assignments = append(assignments, ub.Assign(column, set[column]))
	}
	ub.Set(assignments...)

	ib.SQL(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE %s", strings.Join(conflict, ", "), ib.Var(ub)))

	return ib.Build()
}
