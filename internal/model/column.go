package model

// ColumnMetadata describes one top-level column of a query result as reported
// by the remote record store when a query is described with columns=true.
//
// Nested sub-results and parent relationship traversals carry their own
// columns in JoinColumns. An empty JoinColumns slice means the same as an
// absent one.
type ColumnMetadata struct {
	// ColumnName is the machine name of the column. Unaliased aggregate
	// expressions get a synthetic positional name such as "expr0".
	ColumnName string `json:"columnName"`

	// DisplayName is the human label, e.g. "AVG(AnnualRevenue)".
	DisplayName string `json:"displayName"`

	// Aggregate is true for aggregate expressions and for sub-results
	// (parent-to-children relationship queries).
	Aggregate bool `json:"aggregate"`

	// JoinColumns lists the columns of a nested sub-result or of a
	// parent relationship traversal.
	JoinColumns []ColumnMetadata `json:"joinColumns,omitempty"`

	// APEXType is the type name reported by the remote store. It is kept
	// for the JSON round trip only; classification never looks at it.
	APEXType string `json:"apexType,omitempty"`
}

// HasJoinColumns reports whether the column has at least one join column.
func (c ColumnMetadata) HasJoinColumns() bool {
	return len(c.JoinColumns) > 0
}

// ColumnsResponse is the payload returned by the columns=true describe call.
type ColumnsResponse struct {
	ColumnMetadata []ColumnMetadata `json:"columnMetadata"`
	EntityName     string           `json:"entityName,omitempty"`
	GroupBy        bool             `json:"groupBy,omitempty"`
	IDSelected     bool             `json:"idSelected,omitempty"`
	KeyPrefix      string           `json:"keyPrefix,omitempty"`
}
