package postgres

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// arrayScanner scans PostgreSQL arrays through pgx type handling. A Map is
// not safe for concurrent use, so each query creates its own.
type arrayScanner struct {
	m *pgtype.Map
}

func newArrayScanner() arrayScanner {
	return arrayScanner{m: pgtype.NewMap()}
}

func (a arrayScanner) strings(dst *[]string) sql.Scanner {
	return a.m.SQLScanner(dst)
}

// uuidStrings renders ids for a uuid[] parameter.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid %q in array: %w", v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
