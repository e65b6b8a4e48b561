package agents

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// Loader parses and validates agent definition files.
type Loader struct {
	validate validatorIface
}

type validatorIface interface {
	Struct(s any) error
}

func NewLoader() (*Loader, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	return &Loader{validate: v}, nil
}

// ParseFile reads one definition file: YAML front matter between ---
// delimiters, then the opaque prompt body.
func (l *Loader) ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	header, body, err := splitFrontMatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var def Definition
	if err := yaml.Unmarshal([]byte(header), &def); err != nil {
		return nil, fmt.Errorf("%s: parsing front matter: %w", path, err)
	}
	def.Prompt = strings.TrimSpace(body)
	def.Path = path

	if err := l.validate.Struct(def); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Prompt == "" {
		return nil, fmt.Errorf("%s: prompt body is empty", path)
	}

	return &def, nil
}

// LoadDir parses every .md file in dir. All parse and validation failures are
// aggregated; duplicate names across files are rejected (two definitions with
// the same name would race for the same slot in the host).
func (l *Loader) LoadDir(dir string) ([]Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading agent dir %s: %w", dir, err)
	}

	var (
		defs   []Definition
		errs   error
		byName = map[string]string{} // name -> path
	)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		def, err := l.ParseFile(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		if prev, dup := byName[def.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("duplicate agent name %q in %s and %s", def.Name, prev, path))
			continue
		}
		byName[def.Name] = path
		defs = append(defs, *def)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, errs
}

func splitFrontMatter(content string) (header, body string, err error) {
	trimmed := strings.TrimLeft(content, "\uFEFF\n\r")
	if !strings.HasPrefix(trimmed, frontMatterDelimiter+"\n") && trimmed != frontMatterDelimiter {
		return "", "", fmt.Errorf("missing front matter opening delimiter")
	}

	rest := strings.TrimPrefix(trimmed, frontMatterDelimiter+"\n")
	idx := strings.Index(rest, "\n"+frontMatterDelimiter)
	if idx < 0 {
		return "", "", fmt.Errorf("missing front matter closing delimiter")
	}

	header = rest[:idx]
	body = rest[idx+len("\n"+frontMatterDelimiter):]
	if i := strings.Index(body, "\n"); i >= 0 {
		// nothing may trail the closing delimiter on its own line
		if strings.TrimSpace(body[:i]) != "" {
			return "", "", fmt.Errorf("unexpected content after closing delimiter")
		}
		body = body[i+1:]
	} else if strings.TrimSpace(body) != "" {
		return "", "", fmt.Errorf("unexpected content after closing delimiter")
	}
	return header, body, nil
}
