package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

const versionLayout = "20060102150405"

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

type migrationFile struct {
	version string
	name    string
}

// scanDir lists the .sql files of dir sorted by name. Non-matching names are
// reported through the returned error but still included with an empty version.
func scanDir(dir string) ([]migrationFile, error) {
	if dir == "" {
		return nil, errors.New("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var (
		files []migrationFile
		errs  error
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		f := migrationFile{name: e.Name()}
		if m := sqlFileRe.FindStringSubmatch(e.Name()); m != nil {
			f.version = m[1]
		} else {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected %s_name.sql)", e.Name(), "YYYYMMDDHHMMSS"))
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, errs
}

// ValidateDir checks every migration in dir and reports all problems at once:
// filename format, duplicate versions, goose Up/Down markers and balanced
// StatementBegin/StatementEnd pairs.
func ValidateDir(dir string) error {
	files, errs := scanDir(dir)
	if files == nil && errs != nil {
		return errs
	}

	seen := map[string]string{}
	for _, f := range files {
		if f.version != "" {
			if prev, ok := seen[f.version]; ok {
				errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", f.version, prev, f.name))
			}
			seen[f.version] = f.name
		}

		body, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", f.name, err))
			continue
		}
		errs = multierr.Append(errs, checkBody(f.name, string(body)))
	}
	return errs
}

func checkBody(name, txt string) error {
	var errs error
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(txt, marker) {
			errs = multierr.Append(errs, fmt.Errorf("migration %q missing %q", name, marker))
		}
	}
	begins := strings.Count(txt, "-- +goose StatementBegin")
	ends := strings.Count(txt, "-- +goose StatementEnd")
	if begins != ends {
		errs = multierr.Append(errs, fmt.Errorf("migration %q has %d StatementBegin but %d StatementEnd", name, begins, ends))
	}
	return errs
}
