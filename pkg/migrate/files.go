package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const versionLayout = "20060102150405"

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- +goose StatementEnd
`

var (
	migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	slugUnsafeRe    = regexp.MustCompile(`[^a-z0-9]+`)
)

// now is swapped in tests.
var now = time.Now

func slug(name string) string {
	return strings.Trim(slugUnsafeRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// CreateSQLMigration writes an empty goose migration named
// <version>_<slug>.sql into dir and returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", errors.New("migrations dir is required")
	}
	base := slug(name)
	if base == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations dir: %w", err)
	}

	path := filepath.Join(dir, now().UTC().Format(versionLayout)+"_"+base+".sql")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration file: %w", err)
	}
	_, werr := f.WriteString(migrationTemplate)
	if err := multierr.Append(werr, f.Close()); err != nil {
		return "", fmt.Errorf("write migration file: %w", err)
	}
	return path, nil
}

// ValidateDir checks every .sql file in dir for a well-formed versioned
// name, a unique version and both goose direction markers. All problems are
// reported together.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("migrations dir is required")
	}
	return validateFS(os.DirFS(dir))
}

func validateFS(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	var problems error
	versions := make(map[string]string, len(names))
	for _, name := range names {
		match := migrationFileRe.FindStringSubmatch(name)
		if match == nil {
			problems = multierr.Append(problems, fmt.Errorf("%s: expected <YYYYMMDDHHMMSS>_<name>.sql", name))
			continue
		}
		if other, dup := versions[match[1]]; dup {
			problems = multierr.Append(problems, fmt.Errorf("%s: version %s already used by %s", name, match[1], other))
		}
		versions[match[1]] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			problems = multierr.Append(problems, fmt.Errorf("%s: %w", name, err))
			continue
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(body), marker) {
				problems = multierr.Append(problems, fmt.Errorf("%s: missing %q", name, marker))
			}
		}
	}
	return problems
}
