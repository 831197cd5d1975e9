package utils

import (
	"fmt"
	"reflect"
	"strings"
)

// ColumnList returns the "db" tags of a struct, in field order. Embedded structs are flattened.
// An optional prefix is prepended to every column, to disambiguate joined tables.
func ColumnList[T any](prefix ...string) []string {
	var columnPrefix string
	if len(prefix) > 0 && prefix[0] != "" {
		columnPrefix = prefix[0] + "."
	}
	return columnsOf(reflect.TypeOf(*new(T)), columnPrefix)
}

func columnsOf(t reflect.Type, prefix string) []string {
	columns := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, columnsOf(field.Type, prefix)...)
			continue
		}
		tag, ok := field.Tag.Lookup("db")
		if !ok || tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		columns = append(columns, fmt.Sprintf("%s%s", prefix, name))
	}
	return columns
}
