package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

type counterRow struct {
	Value int64 `json:"value"`
}

// allocateIDs reserves n consecutive integer ids for table and returns the first.
// The increment is a single atomic UPSERT, so concurrent callers never share ids.
func allocateIDs(ctx context.Context, db *surrealdb.DB, table string, n int) (int64, error) {
	sql := "UPSERT $rid SET value = (value OR 0) + $n RETURN AFTER"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID(countersTable, table),
		"n":   n,
	}

	results, err := surrealdb.Query[[]counterRow](ctx, db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s ids: %w", table, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, fmt.Errorf("failed to allocate %s ids: empty result", table)
	}
	last := (*results)[0].Result[0].Value
	return last - int64(n) + 1, nil
}

// firstRows returns the rows of the first statement result, or nil.
func firstRows[T any](results *[]surrealdb.QueryResult[[]T]) []T {
	if results == nil || len(*results) == 0 {
		return nil
	}
	return (*results)[0].Result
}

// statementError returns the first failed statement of a multi-statement query.
func statementError[T any](results *[]surrealdb.QueryResult[T]) error {
	if results == nil {
		return nil
	}
	for i, r := range *results {
		if r.Status != "" && r.Status != "OK" {
			return fmt.Errorf("statement %d failed: %v", i+1, r.Result)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already contains")
}

func isConflict(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "conflict")
}
