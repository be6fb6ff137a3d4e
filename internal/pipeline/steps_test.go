package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/soqlq/internal/classifier"
	"github.com/nao1215/soqlq/internal/model"
)

// fakeQuerier serves canned results.
type fakeQuerier struct {
	result      *model.ResultSet
	columns     []model.ColumnMetadata
	queryErr    error
	columnsErr  error
	columnCalls int
}

func (f *fakeQuerier) Query(_ context.Context, soql string) (*model.ResultSet, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &model.ResultSet{TotalSize: 1, Done: true, Records: []model.Row{{"Query": soql}}}, nil
}

func (f *fakeQuerier) Columns(context.Context, string) ([]model.ColumnMetadata, error) {
	f.columnCalls++
	if f.columnsErr != nil {
		return nil, f.columnsErr
	}
	return f.columns, nil
}

func accountColumns() []model.ColumnMetadata {
	return []model.ColumnMetadata{
		{ColumnName: "Name", DisplayName: "Name"},
		{ColumnName: "Owner", DisplayName: "Owner", JoinColumns: []model.ColumnMetadata{
			{ColumnName: "Email", DisplayName: "Email"},
		}},
		{ColumnName: "Contacts", DisplayName: "Contacts", Aggregate: true, JoinColumns: []model.ColumnMetadata{
			{ColumnName: "LastName", DisplayName: "LastName"},
		}},
		{ColumnName: "expr0", DisplayName: "COUNT(Id)", Aggregate: true},
	}
}

func fieldComparer() cmp.Option {
	return cmp.Comparer(func(a, b model.Field) bool {
		aa, _ := a.Alias()
		ba, _ := b.Alias()
		return a.Kind() == b.Kind() && a.Name() == b.Name() && aa == ba &&
			cmp.Equal(a.Children(), b.Children(), cmp.Comparer(func(x, y model.Field) bool {
				return x.Kind() == y.Kind() && x.Name() == y.Name()
			}))
	})
}

func TestQueryPipeline(t *testing.T) {
	t.Parallel()

	t.Run("fetches describes and classifies", func(t *testing.T) {
		t.Parallel()

		querier := &fakeQuerier{
			result:  &model.ResultSet{TotalSize: 2, Done: true, Records: []model.Row{{"Name": "A"}, {"Name": "B"}}},
			columns: accountColumns(),
		}

		exec := model.NewExecution("SELECT Name FROM Account")
		if err := NewQueryPipeline(querier, discardLogger()).Execute(context.Background(), exec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []model.Field{
			model.NewSimpleField("Name"),
			model.NewSimpleField("Owner.Email"),
			model.NewSubqueryField("Contacts", "LastName"),
			model.NewFunctionField("COUNT(Id)", ""),
		}
		if diff := cmp.Diff(want, exec.Fields, fieldComparer()); diff != "" {
			t.Errorf("fields mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"fetch_records", "fetch_columns", "classify"}, exec.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
		if exec.TotalSize() != 2 {
			t.Errorf("TotalSize() = %d, want 2", exec.TotalSize())
		}
	})

	t.Run("skips describe when nothing matched", func(t *testing.T) {
		t.Parallel()

		querier := &fakeQuerier{
			result:  &model.ResultSet{TotalSize: 0, Done: true, Records: []model.Row{}},
			columns: accountColumns(),
		}

		exec := model.NewExecution("SELECT Name FROM Account WHERE Name = 'none'")
		if err := NewQueryPipeline(querier, discardLogger()).Execute(context.Background(), exec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if querier.columnCalls != 0 {
			t.Errorf("expected no describe call, got %d", querier.columnCalls)
		}
		if len(exec.Fields) != 0 {
			t.Errorf("expected no fields, got %v", exec.Fields)
		}
	})

	t.Run("records query failure", func(t *testing.T) {
		t.Parallel()

		errRemote := errors.New("MALFORMED_QUERY")
		querier := &fakeQuerier{queryErr: errRemote}

		exec := model.NewExecution("SELECT FROM")
		err := NewQueryPipeline(querier, discardLogger()).Execute(context.Background(), exec)

		if !errors.Is(err, errRemote) {
			t.Fatalf("expected remote error, got %v", err)
		}
		if !exec.Failed() || exec.Result != nil {
			t.Errorf("unexpected execution state: failed=%v result=%v", exec.Failed(), exec.Result)
		}
	})

	t.Run("records describe failure", func(t *testing.T) {
		t.Parallel()

		errDescribe := errors.New("describe failed")
		querier := &fakeQuerier{columnsErr: errDescribe}

		exec := model.NewExecution("SELECT Name FROM Account")
		err := NewQueryPipeline(querier, discardLogger()).Execute(context.Background(), exec)

		if !errors.Is(err, errDescribe) {
			t.Fatalf("expected describe error, got %v", err)
		}
		if diff := cmp.Diff([]string{"fetch_records"}, exec.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("fails classification on missing column name", func(t *testing.T) {
		t.Parallel()

		querier := &fakeQuerier{columns: []model.ColumnMetadata{{DisplayName: "Name"}}}

		exec := model.NewExecution("SELECT Name FROM Account")
		err := NewQueryPipeline(querier, discardLogger()).Execute(context.Background(), exec)

		if !errors.Is(err, classifier.ErrMissingColumnName) {
			t.Fatalf("expected ErrMissingColumnName, got %v", err)
		}
		if exec.Fields != nil {
			t.Errorf("expected no fields, got %v", exec.Fields)
		}
	})
}

func TestFetchColumnsStepWithoutResult(t *testing.T) {
	t.Parallel()

	step := NewFetchColumnsStep(&fakeQuerier{}, nil)
	err := step.Do(context.Background(), model.NewExecution("SELECT Id FROM Account"))

	if !errors.Is(err, ErrNoResult) {
		t.Errorf("expected ErrNoResult, got %v", err)
	}
}
