// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"github.com/spf13/cast"
)

// Row is one result row keyed by column name. Text columns arrive as
// string regardless of the backend; NULL is nil.
type Row map[string]interface{}

// Has reports whether the column exists and is not NULL.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Int casts the column loosely ("12" -> 12, NULL -> 0).
func (r Row) Int(key string) int {
	return cast.ToInt(r[key])
}

// Int64 casts the column loosely.
func (r Row) Int64(key string) int64 {
	return cast.ToInt64(r[key])
}

// Float casts the column loosely.
func (r Row) Float(key string) float64 {
	return cast.ToFloat64(r[key])
}

// Bool treats 1/"1"/"true" as true and everything else as false.
func (r Row) Bool(key string) bool {
	return cast.ToBool(r[key])
}

// String returns the column as text, "" for NULL.
func (r Row) String(key string) string {
	return r.StringOr(key, "")
}

// StringOr returns def when the column is missing or NULL. An empty string
// is returned as is.
func (r Row) StringOr(key, def string) string {
	if !r.Has(key) {
		return def
	}
	return cast.ToString(r[key])
}

// normalizeRow converts driver byte slices into strings in place.
func normalizeRow(m map[string]interface{}) Row {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return Row(m)
}

func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
