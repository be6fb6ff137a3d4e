package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResultSet is the record payload of a query as returned by the remote store.
type ResultSet struct {
	// TotalSize is the number of records matched by the query.
	TotalSize int `json:"totalSize"`

	// Done is false while more pages are available upstream.
	Done bool `json:"done"`

	// Records holds the rows in the order returned.
	Records []Row `json:"records"`

	// NextRecordsURL points at the next page. It is dropped once all pages
	// have been fetched.
	NextRecordsURL string `json:"nextRecordsUrl,omitempty"`
}

// DecodeResultSet decodes a query payload. Numbers are kept as json.Number so
// that they render exactly as sent.
func DecodeResultSet(data []byte) (*ResultSet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rs ResultSet
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("failed to decode query result: %w", err)
	}
	if rs.Records == nil {
		rs.Records = []Row{}
	}
	return &rs, nil
}

// QueryResult is everything a reporter needs for a single render pass:
// the query text, the classified fields, the rows and the total count.
type QueryResult struct {
	Query     string
	Fields    []Field
	Rows      []Row
	TotalSize int
}

// NewQueryResult builds a QueryResult from a fetched result set.
// A nil result set yields an empty result.
func NewQueryResult(query string, fields []Field, rs *ResultSet) *QueryResult {
	qr := &QueryResult{
		Query:  query,
		Fields: fields,
		Rows:   []Row{},
	}
	if rs != nil {
		qr.Rows = rs.Records
		qr.TotalSize = rs.TotalSize
	}
	return qr
}

// QueryOutput is the JSON representation of a rendered query:
// the query, its classified columns and the completed result set.
type QueryOutput struct {
	Query   string    `json:"query"`
	Columns []Field   `json:"columns"`
	Result  ResultSet `json:"result"`
}

// DecodeQueryOutput decodes a saved QueryOutput, keeping numbers as
// json.Number.
func DecodeQueryOutput(data []byte) (*QueryOutput, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out QueryOutput
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode query output: %w", err)
	}
	if out.Result.Records == nil {
		out.Result.Records = []Row{}
	}
	return &out, nil
}

// Envelope is the JSON document printed for --json and for the json result
// format: {"status":0,"result":{"data":{...}}}.
type Envelope struct {
	Status int            `json:"status"`
	Result EnvelopeResult `json:"result"`
}

// EnvelopeResult wraps the result set under the "data" key.
type EnvelopeResult struct {
	Data ResultSet `json:"data"`
}

// NewEnvelope wraps a successful query output.
func NewEnvelope(out *QueryOutput) *Envelope {
	return &Envelope{
		Status: 0,
		Result: EnvelopeResult{Data: out.Result},
	}
}
