// Package migration applies the embedded airline schema and tracks which
// versions a database has seen.
package migration

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migration is one versioned schema change.
type Migration struct {
	Version string // zero-padded sequence, e.g. "0001"
	Name    string // e.g. "create_schema"
	UpSQL   string
	DownSQL string
}

// MigrationStatus represents the status of a migration.
type MigrationStatus string

const (
	// StatusPending means the migration has not been applied.
	StatusPending MigrationStatus = "pending"
	// StatusApplied means the migration has been applied.
	StatusApplied MigrationStatus = "applied"
	// StatusFailed means the last attempt to apply the migration failed.
	StatusFailed MigrationStatus = "failed"
)

// MigrationRecord represents a migration in the tracking table.
type MigrationRecord struct {
	Version   string
	Name      string
	Status    MigrationStatus
	AppliedAt *time.Time
	Error     *string
}

// Load returns the migrations shipped with the binary, ordered by version.
func Load() ([]Migration, error) {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS reads {version}_{name}.up.sql / .down.sql pairs from the root of
// fsys. Every version needs an up file; the down file is optional.
func LoadFS(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		version, name, direction, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		} else if m.Name != name {
			return nil, fmt.Errorf("migration %s has conflicting names %q and %q", version, m.Name, name)
		}

		if direction == "up" {
			m.UpSQL = string(content)
		} else {
			m.DownSQL = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if strings.TrimSpace(m.UpSQL) == "" {
			return nil, fmt.Errorf("migration %s_%s has no up file", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// parseFileName splits "0001_create_schema.up.sql".
func parseFileName(file string) (version, name, direction string, ok bool) {
	if path.Ext(file) != ".sql" {
		return "", "", "", false
	}
	base := strings.TrimSuffix(file, ".sql")

	switch {
	case strings.HasSuffix(base, ".up"):
		direction = "up"
	case strings.HasSuffix(base, ".down"):
		direction = "down"
	default:
		return "", "", "", false
	}
	base = strings.TrimSuffix(base, "."+direction)

	version, name, found := strings.Cut(base, "_")
	if !found || version == "" || name == "" {
		return "", "", "", false
	}
	for _, r := range version {
		if r < '0' || r > '9' {
			return "", "", "", false
		}
	}

	return version, name, direction, true
}
