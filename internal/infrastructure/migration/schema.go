package migration

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrSchemaDirty is returned when a previous migration failed half way
	ErrSchemaDirty = errors.New("database schema is dirty")
	// ErrSchemaOutdated is returned when the applied version is older than the code expects
	ErrSchemaOutdated = errors.New("database schema is outdated")
	// ErrNoMigrations is returned when the migrations directory holds no up files
	ErrNoMigrations = errors.New("no migrations found")
)

// VersionSource reports the applied schema version
type VersionSource interface {
	Version() (uint, bool, error)
}

// Upgrader applies pending migrations
type Upgrader interface {
	VersionSource
	Up() error
}

// LatestVersion returns the highest version among "<version>_<name>.up.sql" files in dir
func LatestVersion(dir string) (uint, error) {
	versions, err := AvailableVersions(dir)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, fmt.Errorf("%w in %s", ErrNoMigrations, dir)
	}
	return versions[len(versions)-1], nil
}

// AvailableVersions lists the versions of up migrations in dir, ascending
func AvailableVersions(dir string) ([]uint, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	versions := make([]uint, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		versions = append(versions, uint(v))
	}
	slices.Sort(versions)
	return versions, nil
}

// CheckSchema verifies the applied schema is clean and at least at expected
func CheckSchema(src VersionSource, expected uint) error {
	version, dirty, err := src.Version()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("%w at version %d; repair it and run 'migrate force %d'", ErrSchemaDirty, version, version)
	}
	if version < expected {
		return fmt.Errorf("%w: at version %d, need %d; run 'migrate up'", ErrSchemaOutdated, version, expected)
	}
	return nil
}

// EnsureSchema validates the schema version once at startup.
// With autoMigrate set an outdated schema is upgraded first; a dirty one is never touched.
func EnsureSchema(u Upgrader, expected uint, autoMigrate bool, logger *zap.Logger) error {
	err := CheckSchema(u, expected)
	if err == nil || !autoMigrate || !errors.Is(err, ErrSchemaOutdated) {
		return err
	}

	logger.Info("Schema outdated, applying migrations", zap.Uint("expected_version", expected))
	if err := u.Up(); err != nil {
		return err
	}
	return CheckSchema(u, expected)
}
