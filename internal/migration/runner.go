// Package migration applies schema changes beyond what GORM can infer.
package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Schema is the subset of the database manager the runner needs.
type Schema interface {
	Migrate() error
	Exec(sql string) error
}

type Runner struct {
	schema Schema
	logger *logrus.Logger
}

func NewRunner(schema Schema, logger *logrus.Logger) *Runner {
	return &Runner{
		schema: schema,
		logger: logger,
	}
}

// RunMigrations executes GORM auto-migration then every .sql file in dir.
func (r *Runner) RunMigrations(migrationsPath string) error {
	return r.Run(os.DirFS(migrationsPath))
}

func (r *Runner) Run(fsys fs.FS) error {
	r.logger.Info("Starting database migrations...")

	if err := r.schema.Migrate(); err != nil {
		return fmt.Errorf("GORM auto-migration failed: %w", err)
	}

	if err := r.runSQLMigrations(fsys); err != nil {
		return fmt.Errorf("SQL migrations failed: %w", err)
	}

	r.logger.Info("Database migrations completed successfully")
	return nil
}

func (r *Runner) runSQLMigrations(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}

	sort.Strings(sqlFiles)

	for _, fileName := range sqlFiles {
		content, err := fs.ReadFile(fsys, path.Clean(fileName))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", fileName, err)
		}
		if err := r.schema.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", fileName, err)
		}
		r.logger.WithField("file", fileName).Info("Migration executed successfully")
	}

	return nil
}
