package questions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

const sampleJSON = `[
  {"question": "2 + 2?", "options": ["3", "4", "5"], "answer": "4"},
  {"question": "Capital of France?", "options": ["Paris", "Rome"], "answer": "Paris"}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileProviderJSON(t *testing.T) {
	path := writeFile(t, "questions.json", sampleJSON)
	qs, err := File(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].Text != "2 + 2?" || qs[0].CorrectAnswer != "4" || len(qs[0].Options) != 3 {
		t.Fatalf("unexpected first question: %+v", qs[0])
	}
}

func TestFileProviderYAML(t *testing.T) {
	content := `- question: "2 + 2?"
  options: ["3", "4"]
  answer: "4"
`
	path := writeFile(t, "questions.yml", content)
	qs, err := File(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(qs) != 1 || qs[0].CorrectAnswer != "4" {
		t.Fatalf("unexpected questions: %+v", qs)
	}
}

func TestFileProviderEmpty(t *testing.T) {
	path := writeFile(t, "questions.json", `[]`)
	_, err := File(path).Load(context.Background())
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	path = writeFile(t, "questions.yaml", ``)
	_, err = File(path).Load(context.Background())
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty for empty yaml, got %v", err)
	}
}

func TestFileProviderRejectsInvalidRecord(t *testing.T) {
	content := `[
  {"question": "ok?", "options": ["a", "b"], "answer": "a"},
  {"question": "bad?", "options": ["a", "b"], "answer": "c"}
]`
	path := writeFile(t, "questions.json", content)
	_, err := File(path).Load(context.Background())
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "question 2") {
		t.Fatalf("expected indexed error, got %v", err)
	}
}

func TestFileProviderMissing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "none.json")).Load(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestHTTPProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/questions.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	qs, err := Open(srv.URL+"/questions.json").Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}

	if _, err := Open(srv.URL + "/missing.json").Load(context.Background()); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestOpenPicksProvider(t *testing.T) {
	if _, ok := Open("https://example.com/q.json").(HTTPProvider); !ok {
		t.Fatalf("expected HTTP provider for https URL")
	}
	if _, ok := Open("/tmp/q.json").(FileProvider); !ok {
		t.Fatalf("expected file provider for path")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		q    model.Question
		ok   bool
	}{
		{"valid", model.Question{Text: "q", Options: []string{"a", "b"}, CorrectAnswer: "b"}, true},
		{"empty text", model.Question{Text: " ", Options: []string{"a", "b"}, CorrectAnswer: "a"}, false},
		{"one option", model.Question{Text: "q", Options: []string{"a"}, CorrectAnswer: "a"}, false},
		{"answer missing", model.Question{Text: "q", Options: []string{"a", "b"}, CorrectAnswer: "A"}, false},
	}
	for _, tc := range cases {
		err := Validate(tc.q)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
