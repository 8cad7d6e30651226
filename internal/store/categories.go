package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
)

// DefaultCategoriesFile is looked up when no category file is configured.
const DefaultCategoriesFile = "categories.yaml"

// categoryEntry accepts both "- Groceries" and "- name: Groceries".
type categoryEntry struct {
	Name string `yaml:"name"`
}

func (e *categoryEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Name = node.Value
		return nil
	}
	type plain categoryEntry
	return node.Decode((*plain)(e))
}

type categoriesFile struct {
	Categories []categoryEntry `yaml:"categories"`
}

// CategoryStore loads and saves the category set offered to the
// categorization service.
type CategoryStore struct {
	CategoriesFile string
	logger         logging.Logger
}

// NewCategoryStore creates a store for the given file. An empty name means
// DefaultCategoriesFile.
func NewCategoryStore(categoriesFile string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{CategoriesFile: categoriesFile, logger: logging.OrDefault(logger)}
}

// FindConfigFile looks for filename as given, then under ./config, then
// under ~/.ledger-ingest.
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".ledger-ingest", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

func (s *CategoryStore) filename() string {
	if s.CategoriesFile == "" {
		return DefaultCategoriesFile
	}
	return s.CategoriesFile
}

// Load reads the category set. A missing file yields the built-in set.
func (s *CategoryStore) Load() (models.CategorySet, error) {
	filename := s.filename()
	path, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Debug("Categories file not found, using built-in categories",
			logging.Field{Key: logging.FieldFile, Value: filename})
		return models.DefaultCategorySet(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.CategorySet{}, fmt.Errorf("error reading categories file: %w", err)
	}

	names, err := parseCategories(data)
	if err != nil {
		return models.CategorySet{}, fmt.Errorf("error parsing categories file %s: %w", path, err)
	}
	if len(names) == 0 {
		s.logger.Warn("Categories file is empty, using built-in categories",
			logging.Field{Key: logging.FieldFile, Value: path})
		return models.DefaultCategorySet(), nil
	}

	set := models.NewCategorySet(names)
	s.logger.Debug("Loaded categories",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: set.Len()})
	return set, nil
}

// parseCategories accepts a "categories:" document or a bare list.
func parseCategories(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	top := root.Content[0]
	switch top.Kind {
	case yaml.MappingNode:
		var doc categoriesFile
		if err := top.Decode(&doc); err != nil {
			return nil, err
		}
		return entryNames(doc.Categories), nil
	case yaml.SequenceNode:
		var list []categoryEntry
		if err := top.Decode(&list); err != nil {
			return nil, err
		}
		return entryNames(list), nil
	default:
		return nil, errors.New("expected a list of categories")
	}
}

func entryNames(entries []categoryEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

// Save writes set as a "categories:" document, creating parent directories.
// An existing file found by FindConfigFile is overwritten in place.
func (s *CategoryStore) Save(set models.CategorySet) error {
	filename := s.filename()
	path, err := s.FindConfigFile(filename)
	if err != nil {
		path = filename
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	doc := struct {
		Categories []string `yaml:"categories"`
	}{Categories: set.Names()}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling categories: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing categories: %w", err)
	}

	s.logger.Debug("Saved categories",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: set.Len()})
	return nil
}
