// Package classifier turns the column metadata returned alongside a query
// into the ordered field list the reporters render.
//
// Every top-level column yields exactly one field except a non-aggregate
// column with join columns, which is a parent relationship and yields one
// flattened field per join column. Rows are never inspected.
package classifier
