// Package questions loads and validates question documents.
package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
)

// ErrEmpty is returned when a document holds no questions.
var ErrEmpty = errors.New("question list is empty")

const httpTimeout = 30 * time.Second

// FileProvider reads questions from a local file.
type FileProvider struct {
	Path string
}

// File returns a provider backed by the file at path.
func File(path string) FileProvider {
	return FileProvider{Path: path}
}

// Load implements quiz.Provider.
func (p FileProvider) Load(_ context.Context) ([]model.Question, error) {
	file, err := os.Open(p.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only question file.
			_ = cerr
		}
	}()
	return decode(file, formatFor(filepath.Ext(p.Path)))
}

// HTTPProvider fetches questions with a GET request.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

// HTTP returns a provider fetching url. A nil client gets a default timeout.
func HTTP(url string, client *http.Client) HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	return HTTPProvider{URL: url, Client: client}
}

// Load implements quiz.Provider.
func (p HTTPProvider) Load(ctx context.Context) ([]model.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	format := formatFor(path.Ext(req.URL.Path))
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		format = formatYAML
	}
	return decode(resp.Body, format)
}

// Open picks a provider for location: http(s) URLs are fetched, anything
// else is read from disk.
func Open(location string) quiz.Provider {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return HTTP(location, nil)
	}
	return File(location)
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatFor(ext string) format {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// decode parses a question array and validates every record.
func decode(r io.Reader, f format) ([]model.Question, error) {
	var qs []model.Question
	switch f {
	case formatYAML:
		if err := yaml.NewDecoder(r).Decode(&qs); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode questions: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&qs); err != nil {
			return nil, fmt.Errorf("failed to decode questions: %w", err)
		}
	}
	if len(qs) == 0 {
		return nil, ErrEmpty
	}
	for i, q := range qs {
		if err := Validate(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return qs, nil
}
