// Package tabledump prints whole tables for operators, as tab-separated text or as a workbook.
package tabledump

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"

	"github.com/offerlab/offerdb/internal/infra/db"
)

// Tables are the tables that can be dumped.
var Tables = []string{
	"offers",
	"offers_packages",
	"organizations",
	"packages",
	"persons",
	"persons_organizations",
	"projects",
	"projects_persons",
	"user",
}

var ErrUnknownTable = errors.New("unknown table")

// Write prints table to w: a header line of column names, then one line per row, tab separated.
func Write(ctx context.Context, q db.Querier, table string, w io.Writer) error {
	return dump(ctx, q, table, func(values []any) error {
		fields := make([]string, len(values))
		for i, v := range values {
			fields[i] = text(v)
		}
		_, err := io.WriteString(w, strings.Join(fields, "\t")+"\n")
		return err
	})
}

// Workbook returns table as a single-sheet workbook. The caller closes it.
func Workbook(ctx context.Context, q db.Querier, table string) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, table); err != nil {
		_ = f.Close()
		return nil, err
	}

	row := 1
	err := dump(ctx, q, table, func(values []any) error {
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = cell(v)
		}
		addr, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(table, addr, &cells)
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// dump calls emit with the column names, then with the values of every row.
func dump(ctx context.Context, q db.Querier, table string, emit func([]any) error) error {
	if !slices.Contains(Tables, table) {
		return fmt.Errorf("%w %q", ErrUnknownTable, table)
	}

	rows, err := q.Query(ctx, `SELECT * FROM `+pgx.Identifier{table}.Sanitize())
	if err != nil {
		return fmt.Errorf("dump %s: %w", table, err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	header := make([]any, len(fds))
	for i, fd := range fds {
		header[i] = fd.Name
	}
	if err := emit(header); err != nil {
		return err
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return fmt.Errorf("dump %s: %w", table, err)
		}
		if err := emit(values); err != nil {
			return err
		}
	}
	return rows.Err()
}

func text(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case time.Time:
		return v.Format(time.DateTime)
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil || dv == nil {
			return "NULL"
		}
		return text(dv)
	default:
		return fmt.Sprint(v)
	}
}

// cell keeps numbers and times typed so the sheet can compute with them.
func cell(v any) any {
	switch v := v.(type) {
	case nil:
		return ""
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return f.Float64
	case string, bool, time.Time, int16, int32, int64, float32, float64:
		return v
	default:
		return text(v)
	}
}
