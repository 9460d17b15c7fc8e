package pgwh

import (
	"reflect"
	"strings"
	"time"

	perr "ghstats/internal/platform/errors"
)

// column is one struct field mapped to a table column
type column struct {
	Name     string
	SQLType  string
	Nullable bool
	index    int
}

var timeType = reflect.TypeOf(time.Time{})

// structColumns derives the column list from a model struct. Field names
// come from the bigquery tag so both warehouse drivers agree on naming
func structColumns(model any) ([]column, error) {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "pgwh: model %T is not a struct", model)
	}

	cols := make([]column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("bigquery"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}
		sqlType, nullable, err := sqlTypeOf(f.Type)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "pgwh: field %s.%s", t.Name(), f.Name)
		}
		cols = append(cols, column{Name: name, SQLType: sqlType, Nullable: nullable, index: i})
	}
	if len(cols) == 0 {
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "pgwh: model %T has no columns", model)
	}
	return cols, nil
}

// structValues extracts one row's values in cols order. Nil pointers become
// sql nulls
func structValues(row any, cols []column) ([]any, error) {
	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, perr.New(perr.ErrorCodeInvalidArgument, "pgwh: nil row")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "pgwh: row %T is not a struct", row)
	}

	out := make([]any, len(cols))
	for i, c := range cols {
		fv := v.Field(c.index)
		if fv.Kind() == reflect.Pointer && fv.IsNil() {
			out[i] = nil
			continue
		}
		if fv.Kind() == reflect.Pointer {
			fv = fv.Elem()
		}
		out[i] = fv.Interface()
	}
	return out, nil
}

// sqlTypeOf maps a Go field type to its postgres column type
func sqlTypeOf(t reflect.Type) (sqlType string, nullable bool, err error) {
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}
	if t == timeType {
		return "TIMESTAMPTZ", nullable, nil
	}
	switch t.Kind() {
	case reflect.String:
		return "TEXT", nullable, nil
	case reflect.Bool:
		return "BOOLEAN", nullable, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return "BIGINT", nullable, nil
	case reflect.Float32, reflect.Float64:
		return "DOUBLE PRECISION", nullable, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return "TEXT[]", nullable, nil
		}
		return "", false, perr.Newf(perr.ErrorCodeInvalidArgument, "unsupported column type %s", t)
	default:
		return "", false, perr.Newf(perr.ErrorCodeInvalidArgument, "unsupported column type %s", t)
	}
}
