package definition

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/rules"
)

var (
	// ErrEmptyDocument is returned for blank definition files.
	ErrEmptyDocument = errors.New("definition: document is empty")
	// ErrFormNotFound is returned by Store.Form for unknown ids.
	ErrFormNotFound = errors.New("definition: form not found")
)

// Store holds the form definitions loaded from a directory tree.
type Store struct {
	forms map[string]model.FormModel
}

type documentFile struct {
	model.FormModel `yaml:",inline"`
	Forms           []model.FormModel `json:"forms" yaml:"forms"`
}

// LoadFS walks fsys and parses every JSON/YAML definition file. A nil fsys
// yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]model.FormModel)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}
		forms, err := Parse(data, path)
		if err != nil {
			return err
		}
		for _, form := range forms {
			if _, exists := store.forms[form.ID]; exists {
				return fmt.Errorf("definition: duplicate form %q (file %s)", form.ID, path)
			}
			store.forms[form.ID] = form
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LoadFile parses a single definition file. When the file defines several
// forms, id selects one; an empty id requires exactly one form.
func LoadFile(path, id string) (model.FormModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("definition: read %s: %w", path, err)
	}
	forms, err := Parse(data, path)
	if err != nil {
		return model.FormModel{}, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		if len(forms) != 1 {
			return model.FormModel{}, fmt.Errorf("definition: %s defines %d forms, select one by id", path, len(forms))
		}
		return forms[0], nil
	}
	for _, form := range forms {
		if form.ID == id {
			return form, nil
		}
	}
	return model.FormModel{}, fmt.Errorf("definition: %s: %q: %w", path, id, ErrFormNotFound)
}

// Parse decodes a JSON or YAML document holding either one form at the top
// level or a "forms" list, and checks that every form is usable.
func Parse(data []byte, source string) ([]model.FormModel, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("definition: %s: %w", source, ErrEmptyDocument)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if yamlErr := yaml.Unmarshal(data, &doc); yamlErr != nil {
			return nil, fmt.Errorf("definition: parse %s: invalid JSON or YAML: %w", source, yamlErr)
		}
	}

	forms := doc.Forms
	if len(doc.FormModel.Fields) > 0 || doc.FormModel.ID != "" {
		forms = append([]model.FormModel{doc.FormModel}, forms...)
	}
	if len(forms) == 0 {
		return nil, fmt.Errorf("definition: %s: %w", source, ErrEmptyDocument)
	}

	for i := range forms {
		if err := normalise(&forms[i], source); err != nil {
			return nil, err
		}
	}
	return forms, nil
}

// IDs lists the loaded form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Form returns the definition with the given id.
func (s *Store) Form(id string) (model.FormModel, error) {
	if s != nil {
		if form, ok := s.forms[id]; ok {
			return form, nil
		}
	}
	return model.FormModel{}, fmt.Errorf("definition: %q: %w", id, ErrFormNotFound)
}

func normalise(form *model.FormModel, source string) error {
	form.ID = strings.TrimSpace(form.ID)
	if form.ID == "" {
		return fmt.Errorf("definition: %s defines a form without id", source)
	}
	if len(form.Fields) == 0 {
		return fmt.Errorf("definition: form %q (%s) has no fields", form.ID, source)
	}

	seen := make(map[string]struct{}, len(form.Fields))
	for i := range form.Fields {
		field := &form.Fields[i]
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return fmt.Errorf("definition: form %q (%s) field %d has no name", form.ID, source, i)
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("definition: form %q (%s) repeats field %q", form.ID, source, field.Name)
		}
		seen[field.Name] = struct{}{}
		if field.Type == "" {
			field.Type = model.FieldTypeString
		}
	}

	if _, _, err := rules.FromForm(*form); err != nil {
		return fmt.Errorf("definition: form %q (%s): %w", form.ID, source, err)
	}
	return nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
