// Package standards loads coding standards, indexes them into the vector
// store and retrieves the ones relevant to a pull request.
package standards

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type classifies a standard. Corporate, team and repository standards always
// apply; file history and postmortem standards only apply to the files they name.
type Type string

const (
	TypeCorporate   Type = "corporate"
	TypeTeam        Type = "team"
	TypeRepository  Type = "repository"
	TypeFileHistory Type = "file_history"
	TypePostmortem  Type = "postmortem"
)

// Scoped reports whether the type only applies to matching files.
func (t Type) Scoped() bool {
	return t == TypeFileHistory || t == TypePostmortem
}

func (t Type) valid() bool {
	switch t {
	case TypeCorporate, TypeTeam, TypeRepository, TypeFileHistory, TypePostmortem:
		return true
	}
	return false
}

// Standard is one coding standard document.
type Standard struct {
	ID             string   `yaml:"standard_id"`
	Type           Type     `yaml:"standard_type"`
	Title          string   `yaml:"title"`
	Content        string   `yaml:"content"`
	CodeSample     string   `yaml:"code_sample"`
	Severity       string   `yaml:"severity"`
	Language       string   `yaml:"language"`
	Tags           []string `yaml:"tags"`
	AppliesToGlobs []string `yaml:"applies_to_globs"`
	AffectedFiles  []string `yaml:"affected_files"`

	// Source is the file the standard was loaded from.
	Source string `yaml:"-"`
}

// ErrInvalidStandard wraps every validation failure.
var ErrInvalidStandard = errors.New("invalid standard")

func (s *Standard) normalize() error {
	s.Type = Type(strings.ToLower(strings.TrimSpace(string(s.Type))))
	s.Title = strings.TrimSpace(s.Title)
	s.Content = strings.TrimSpace(s.Content)
	s.CodeSample = strings.TrimSpace(s.CodeSample)
	if s.Severity == "" {
		s.Severity = "medium"
	}
	if s.Language == "" {
		s.Language = "all"
	}

	switch {
	case s.ID == "":
		return fmt.Errorf("%w: %s: standard_id is required", ErrInvalidStandard, s.Source)
	case !s.Type.valid():
		return fmt.Errorf("%w: %s: unknown standard_type %q", ErrInvalidStandard, s.Source, s.Type)
	case s.Title == "":
		return fmt.Errorf("%w: %s: title is required", ErrInvalidStandard, s.Source)
	case s.Content == "" && s.CodeSample == "":
		return fmt.Errorf("%w: %s: content or code_sample is required", ErrInvalidStandard, s.Source)
	}
	return nil
}

// LoadDir reads every standard under root. YAML files may hold several
// documents separated by "---"; Markdown files carry their fields in YAML
// front matter and use the body as content. Markdown without front matter and
// hidden directories such as .git are skipped.
func LoadDir(root string) ([]Standard, error) {
	var out []Standard
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		var parse func([]byte, string) ([]Standard, error)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parse = ParseYAML
		case ".md":
			parse = func(b []byte, src string) ([]Standard, error) {
				if !bytes.HasPrefix(b, []byte(frontMatterDelim)) {
					return nil, nil
				}
				s, err := ParseMarkdown(b, src)
				if err != nil {
					return nil, err
				}
				return []Standard{s}, nil
			}
		default:
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs, err := parse(raw, filepath.ToSlash(path))
		if err != nil {
			return err
		}
		out = append(out, docs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ParseYAML decodes one or more standards from a YAML stream.
func ParseYAML(raw []byte, source string) ([]Standard, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	var out []Standard
	for {
		var s Standard
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidStandard, source, err)
		}
		s.Source = source
		if err := s.normalize(); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

const frontMatterDelim = "---"

// ParseMarkdown decodes a standard from a Markdown file with YAML front matter.
func ParseMarkdown(raw []byte, source string) (Standard, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasPrefix(text, frontMatterDelim+"\n") {
		return Standard{}, fmt.Errorf("%w: %s: front matter is required", ErrInvalidStandard, source)
	}
	rest := text[len(frontMatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelim+"\n")
	if end < 0 {
		return Standard{}, fmt.Errorf("%w: %s: unterminated front matter", ErrInvalidStandard, source)
	}

	var s Standard
	if err := yaml.Unmarshal([]byte(rest[:end]), &s); err != nil {
		return Standard{}, fmt.Errorf("%w: %s: %v", ErrInvalidStandard, source, err)
	}
	if body := strings.TrimSpace(rest[end+len(frontMatterDelim)+2:]); body != "" {
		s.Content = body
	}
	s.Source = source
	if err := s.normalize(); err != nil {
		return Standard{}, err
	}
	return s, nil
}
