package report

import (
	"errors"
	"testing"

	"github.com/nao1215/soqlq/internal/model"
)

func TestNew(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		format model.ResultFormat
		want   Format
	}{
		{model.ResultFormatHuman, FormatText},
		{model.ResultFormatCSV, FormatCSV},
		{model.ResultFormatJSON, FormatJSON},
		{model.ResultFormatMarkdown, FormatMarkdown},
	}

	for _, tc := range testCases {
		t.Run(string(tc.format), func(t *testing.T) {
			t.Parallel()

			r, err := New(tc.format, Params{})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if r.Format() != tc.want {
				t.Errorf("Format() = %q, want %q", r.Format(), tc.want)
			}
		})
	}

	t.Run("unknown format fails before rendering", func(t *testing.T) {
		t.Parallel()

		r, err := New(model.ResultFormat("xml"), Params{})
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("New() error = %v, want ErrUnknownFormat", err)
		}
		if r != nil {
			t.Error("New() should not return a reporter")
		}
	})

	t.Run("names are parsed", func(t *testing.T) {
		t.Parallel()

		r, err := NewFromName("md", Params{})
		if err != nil || r.Format() != FormatMarkdown {
			t.Errorf("NewFromName(md) = %v, %v", r, err)
		}
		if _, err := NewFromName("yaml", Params{}); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("NewFromName(yaml) error = %v, want ErrUnknownFormat", err)
		}
	})
}
