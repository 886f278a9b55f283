package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	interrors "github.com/bellmemo/bell-memo/internal/errors"
)

func TestParseImport(t *testing.T) {
	fixed := uuid.MustParse("5f0c2d8e-6a8b-4c53-9a51-3d6f1f0b7a10")

	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "json array",
			input:     `[{"id":"` + fixed.String() + `","title":"a"},{"title":"b","content":"x"}]`,
			wantCount: 2,
		},
		{
			name:      "json lines",
			input:     "{\"title\":\"a\"}\n{\"title\":\"b\"}\n\n{\"content\":\"c\"}\n",
			wantCount: 3,
		},
		{
			name:      "leading whitespace before array",
			input:     "\n\t  [{\"title\":\"a\"}]",
			wantCount: 1,
		},
		{
			name:      "empty input",
			input:     "   \n",
			wantCount: 0,
		},
		{
			name:      "empty array",
			input:     "[]",
			wantCount: 0,
		},
		{
			name:    "malformed line",
			input:   "{\"title\":\"a\"}\n{oops}\n",
			wantErr: true,
		},
		{
			name:      "empty and null ids",
			input:     `[{"id":"","title":"a"},{"id":null,"title":"b"}]`,
			wantCount: 2,
		},
		{
			name:    "bad id",
			input:   `[{"id":"not-a-uuid"}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memos, err := parseImport(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseImport() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(memos) != tt.wantCount {
				t.Fatalf("parseImport() returned %d memos, want %d", len(memos), tt.wantCount)
			}
			for _, m := range memos {
				if m.ID == uuid.Nil {
					t.Errorf("memo was left without an id")
				}
			}
		})
	}
}

func TestParseImportKeepsFields(t *testing.T) {
	id := uuid.New()
	input := `{"id":"` + id.String() + `","title":"Standup","created":1700000000}`

	memos, err := parseImport(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseImport() error = %v", err)
	}
	if len(memos) != 1 {
		t.Fatalf("expected 1 memo, got %d", len(memos))
	}

	m := memos[0]
	if m.ID != id {
		t.Errorf("ID = %s, want %s", m.ID, id)
	}
	if m.Title == nil || *m.Title != "Standup" {
		t.Errorf("Title = %v, want Standup", m.Title)
	}
	if m.Content != nil {
		t.Errorf("Content = %q, want NULL", *m.Content)
	}
	if m.Created == nil || *m.Created != 1700000000 {
		t.Errorf("Created = %v, want 1700000000", m.Created)
	}
	if m.Updated != nil {
		t.Errorf("Updated = %d, want NULL", *m.Updated)
	}
}

func TestParseImportBadIDIsInvalidMemoID(t *testing.T) {
	_, err := parseImport(strings.NewReader("{\"title\":\"ok\"}\n{\"id\":\"nope\"}\n"))
	if !errors.Is(err, interrors.ErrInvalidMemoID) {
		t.Fatalf("parseImport() error = %v, want ErrInvalidMemoID", err)
	}
	if !strings.Contains(err.Error(), "record 2") {
		t.Errorf("error %q does not name the record", err)
	}
}

func TestBuildMemo(t *testing.T) {
	t.Run("leaves id and timestamps to Create", func(t *testing.T) {
		m, err := buildMemo("", "Title", "")
		if err != nil {
			t.Fatalf("buildMemo() error = %v", err)
		}
		if m.ID != uuid.Nil {
			t.Errorf("ID = %s, want nil UUID", m.ID)
		}
		if m.Content != nil {
			t.Error("expected NULL content")
		}
		if m.Created != nil || m.Updated != nil {
			t.Error("expected timestamps to be unset")
		}
	})

	t.Run("explicit id", func(t *testing.T) {
		id := uuid.New()
		m, err := buildMemo(id.String(), "", "body")
		if err != nil {
			t.Fatalf("buildMemo() error = %v", err)
		}
		if m.ID != id {
			t.Errorf("ID = %s, want %s", m.ID, id)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := buildMemo("nope", "t", "")
		if !errors.Is(err, interrors.ErrInvalidMemoID) {
			t.Errorf("error = %v, want ErrInvalidMemoID", err)
		}
	})

	t.Run("nothing to store", func(t *testing.T) {
		_, err := buildMemo("", "", "  \n")
		if !errors.Is(err, interrors.ErrEmptyMemo) {
			t.Errorf("error = %v, want ErrEmptyMemo", err)
		}
	})
}
