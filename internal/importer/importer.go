// Package importer loads timeline items from seed files and calendars.
package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fentz26/timeline/internal/log"
	"github.com/fentz26/timeline/internal/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat indicates a file extension with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported items format")

// Options bound calendar expansion.
type Options struct {
	HorizonDays    int
	MaxOccurrences int
}

// DefaultOptions returns the expansion limits used when none are configured.
func DefaultOptions() Options {
	return Options{HorizonDays: 365, MaxOccurrences: 100}
}

// LoadFile decodes items from path, picking the decoder by extension.
func LoadFile(path string, opts Options) ([]models.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items file: %w", err)
	}
	defer f.Close()

	var items []models.Item
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		items, err = DecodeYAML(f)
	case ".json":
		items, err = DecodeJSON(f)
	case ".ics", ".ical":
		items, err = DecodeICS(f, opts)
		// Unreadable events are dropped; the rest of the calendar still loads.
		if err != nil && len(items) > 0 {
			log.Warn("ics events skipped", "path", path, "loaded", len(items), "error", err)
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	log.Info("items loaded", "path", path, "count", len(items))
	return items, nil
}

type document struct {
	Items []models.Item `yaml:"items" json:"items"`
}

// DecodeYAML reads either a bare list of items or a mapping with an
// `items` key.
func DecodeYAML(r io.Reader) ([]models.Item, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Item{}, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	var items []models.Item
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	case yaml.MappingNode:
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		items = doc.Items
	default:
		return nil, fmt.Errorf("decode items: expected list or mapping at line %d", node.Line)
	}
	return normalize(items), nil
}

// DecodeJSON reads either a JSON array of items or an object with an
// `items` key.
func DecodeJSON(r io.Reader) ([]models.Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []models.Item{}, nil
	}

	var items []models.Item
	if data[0] == '[' {
		err = json.Unmarshal(data, &items)
	} else {
		var doc document
		err = json.Unmarshal(data, &doc)
		items = doc.Items
	}
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return normalize(items), nil
}

// normalize fills missing ids and shortens names to the accepted length.
func normalize(items []models.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		it.ID = strings.TrimSpace(it.ID)
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.Name = truncate(strings.TrimSpace(it.Name), models.MaxNameLength)
		it.Start = strings.TrimSpace(it.Start)
		it.End = strings.TrimSpace(it.End)
		if it.End == "" {
			it.End = it.Start
		}
		out = append(out, it)
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
