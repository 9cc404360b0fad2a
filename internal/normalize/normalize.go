// Package normalize coerces fetched datasets into a single tabular shape and
// clears timezone information ahead of charting and export.
package normalize

import (
	"time"

	"stockanalyzer/internal/model"
)

// Normalize converts a fetched dataset to tabular form.
// Empty datasets return nil. A mapping is only meaningful for the "info"
// data type, where it becomes a one-row table preserving key order; any other
// non-tabular shape also normalizes to nil.
func Normalize(ds model.Dataset, dataType string) *model.Table {
	switch ds.Kind {
	case model.DatasetTable:
		if ds.Table.Empty() {
			return nil
		}
		return ds.Table
	case model.DatasetMapping:
		if dataType != "info" {
			return nil
		}
		return mappingTable(dataType, ds.Mapping)
	default:
		return nil
	}
}

func mappingTable(name string, entries []model.MapEntry) *model.Table {
	if len(entries) == 0 {
		return nil
	}
	t := &model.Table{
		Name:      name,
		IndexType: model.ColNumber,
		Index:     []model.Value{model.Num(0)},
		Columns:   make([]model.Column, 0, len(entries)),
	}
	for _, e := range entries {
		t.Columns = append(t.Columns, model.Column{
			Name:   e.Key,
			Type:   columnTypeFor(e.Value),
			Values: []model.Value{e.Value},
		})
	}
	return t
}

func columnTypeFor(v model.Value) model.ColumnType {
	switch v.Kind {
	case model.KindNum:
		return model.ColNumber
	case model.KindText:
		return model.ColText
	case model.KindTime:
		return model.ColTime
	default:
		return model.ColAny
	}
}

// StripTimezone returns a copy of the table with timezone information cleared
// while keeping date values as dates. The input is never mutated.
//
// A time-typed index or column keeps its wall-clock reading, reinterpreted in
// UTC. Untyped columns whose values all look timestamp-like are coerced to
// bare calendar dates; if any value fails to coerce the column is left
// untouched.
func StripTimezone(t *model.Table) *model.Table {
	if t == nil {
		return nil
	}
	cp := t.Clone()

	if cp.IndexType == model.ColTime {
		for i, v := range cp.Index {
			if v.Kind == model.KindTime {
				cp.Index[i] = model.TimeOf(naiveUTC(v.Time))
			}
		}
	}

	for ci := range cp.Columns {
		col := &cp.Columns[ci]
		switch col.Type {
		case model.ColTime:
			for i, v := range col.Values {
				if v.Kind == model.KindTime {
					col.Values[i] = model.TimeOf(naiveUTC(v.Time))
				}
			}
		case model.ColAny:
			coerceDateColumn(col)
		}
	}
	return cp
}

// StripSeriesTimezone clears timezone information from historical bars,
// operating on a copy.
func StripSeriesTimezone(bars []model.Bar) []model.Bar {
	out := make([]model.Bar, len(bars))
	for i, b := range bars {
		b.Time = naiveUTC(b.Time)
		out[i] = b
	}
	return out
}

// coerceDateColumn rewrites an untyped column to calendar dates when every
// non-nil value is timestamp-like. Any failure leaves the column as is.
func coerceDateColumn(col *model.Column) {
	converted := make([]model.Value, len(col.Values))
	for i, v := range col.Values {
		switch v.Kind {
		case model.KindNil:
			converted[i] = v
		case model.KindTime:
			converted[i] = model.TimeOf(dateOnly(v.Time))
		case model.KindText:
			ts, ok := parseTimestamp(v.Str)
			if !ok {
				return
			}
			converted[i] = model.TimeOf(dateOnly(ts))
		default:
			return
		}
	}
	col.Values = converted
	col.Type = model.ColTime
}

// timestampLayouts are tried in order when sniffing text values.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// naiveUTC keeps the wall-clock reading and drops the zone.
func naiveUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// dateOnly truncates to the calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
