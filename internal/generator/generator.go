// Package generator drives a full run: inspect the catalog, resolve
// relations over every inspected table, render the requested models, and
// write the output package. The database connection is released before the
// first file is written.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/crawlkit/sqlgen/internal/config"
	"github.com/crawlkit/sqlgen/internal/inspector"
	"github.com/crawlkit/sqlgen/internal/naming"
	"github.com/crawlkit/sqlgen/internal/relation"
	"github.com/crawlkit/sqlgen/internal/render"
	"github.com/crawlkit/sqlgen/internal/schema"
)

const connectTimeout = 10 * time.Second

type Options struct {
	// Tables restricts generation to the named tables. Empty means every
	// table in the catalog.
	Tables []string
	Out    string
	Pkg    string
}

// Report summarizes one generation run. It serializes to YAML for the
// --report flag.
type Report struct {
	GeneratedAt time.Time     `yaml:"generated_at"`
	Provider    string        `yaml:"provider"`
	OutputDir   string        `yaml:"output_dir"`
	Tables      []TableReport `yaml:"tables"`
}

type TableReport struct {
	Name     string           `yaml:"name"`
	File     string           `yaml:"file"`
	Success  bool             `yaml:"success"`
	Error    string           `yaml:"error,omitempty"`
	Warnings []schema.Warning `yaml:"warnings,omitempty"`
}

// WriteError aggregates per-file write failures. Generation keeps going past
// a failed file; the report marks each failure individually.
type WriteError struct {
	Failures map[string]error
}

func (e *WriteError) Error() string {
	files := make([]string, 0, len(e.Failures))
	for f := range e.Failures {
		files = append(files, f)
	}
	sort.Strings(files)
	return fmt.Sprintf("failed to write %d file(s): %s", len(files), strings.Join(files, ", "))
}

type Service struct {
	config    *config.Config
	inspector inspector.Inspector
	quiet     bool
	now       func() time.Time
}

// NewService connects to the configured database with a bounded timeout.
func NewService(cfg *config.Config) (*Service, error) {
	insp := inspector.New(cfg.Database.Provider)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := insp.Connect(ctx, cfg.DSN()); err != nil {
		return nil, err
	}
	return &Service{config: cfg, inspector: insp, now: time.Now}, nil
}

func (s *Service) Close() {
	if s.inspector != nil {
		s.inspector.Close()
	}
}

// ListTables returns every base table in the catalog, sorted. No files are
// written.
func (s *Service) ListTables(ctx context.Context) ([]string, error) {
	return s.inspector.ListTables(ctx)
}

type renderResult struct {
	index    int
	table    string
	source   string
	warnings []schema.Warning
	err      error
}

// Generate runs the full pipeline. Relations are resolved over every table
// the catalog holds, so a subset run still sees foreign keys into tables it
// is not generating. Fatal conditions (missing tables, name collisions)
// surface before any file is written; per-file write failures are recorded
// and the remaining files still go out.
func (s *Service) Generate(ctx context.Context, opts Options) (*Report, error) {
	outDir := opts.Out
	if outDir == "" {
		outDir = s.config.Gen.Out
	}
	pkg := opts.Pkg
	if pkg == "" {
		pkg = s.config.Gen.Package
	}

	all, err := s.inspector.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	requested := opts.Tables
	if len(requested) == 0 {
		requested = all
	} else if err := checkRequested(all, requested); err != nil {
		return nil, err
	}

	s.progress("🔍 Inspecting %d table(s)...", len(all))
	tables, err := s.inspector.Describe(ctx, all)
	if err != nil {
		return nil, err
	}

	// Metadata is fully in memory now; give the connection back before any
	// rendering or file IO happens.
	s.Close()

	if err := naming.CheckCollisions(requested); err != nil {
		return nil, err
	}

	generated := make(map[string]bool, len(requested))
	for _, name := range requested {
		generated[name] = true
	}
	relations, relWarnings := relation.Resolve(tables, generated)

	byName := make(map[string]schema.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	renderer := render.New(pkg)
	renderer.Now = s.now

	results := make(chan renderResult, len(requested))
	var wg sync.WaitGroup
	for i, name := range requested {
		wg.Add(1)
		go func(index int, table schema.Table) {
			defer wg.Done()
			ir, warnings := render.BuildIR(table, relations)
			src, err := renderer.Render(ir)
			results <- renderResult{
				index:    index,
				table:    table.Name,
				source:   src,
				warnings: warnings,
				err:      err,
			}
		}(i, byName[name])
	}
	wg.Wait()
	close(results)

	ordered := make([]renderResult, len(requested))
	for res := range results {
		ordered[res.index] = res
	}

	warningsByTable := make(map[string][]schema.Warning)
	for _, w := range relWarnings {
		warningsByTable[w.Table] = append(warningsByTable[w.Table], w)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, &WriteError{Failures: map[string]error{outDir: err}}
	}

	report := &Report{
		GeneratedAt: s.now().UTC(),
		Provider:    s.config.Database.Provider,
		OutputDir:   outDir,
	}
	failures := make(map[string]error)

	classNames := make([]string, 0, len(requested))
	for _, res := range ordered {
		tr := TableReport{
			Name:     res.table,
			File:     res.table + ".go",
			Warnings: append(res.warnings, warningsByTable[res.table]...),
		}
		if res.err != nil {
			tr.Error = res.err.Error()
			failures[tr.File] = res.err
			report.Tables = append(report.Tables, tr)
			continue
		}
		path := filepath.Join(outDir, tr.File)
		if err := os.WriteFile(path, []byte(res.source), 0644); err != nil {
			tr.Error = err.Error()
			failures[tr.File] = err
			report.Tables = append(report.Tables, tr)
			s.warn("⚠️  Failed to write %s: %v", path, err)
			continue
		}
		tr.Success = true
		classNames = append(classNames, naming.TypeName(res.table))
		report.Tables = append(report.Tables, tr)
		s.progress("✅ Generated %s", path)
	}

	if err := s.writeRendered(renderer.RenderBase, filepath.Join(outDir, "base.go"), failures); err == nil {
		s.progress("✅ Generated %s", filepath.Join(outDir, "base.go"))
	}
	if err := s.writeRendered(func() (string, error) {
		return renderer.RenderIndex(classNames)
	}, filepath.Join(outDir, "index.go"), failures); err == nil {
		s.progress("✅ Generated %s", filepath.Join(outDir, "index.go"))
	}

	if len(failures) > 0 {
		return report, &WriteError{Failures: failures}
	}
	return report, nil
}

func (s *Service) writeRendered(produce func() (string, error), path string, failures map[string]error) error {
	src, err := produce()
	if err == nil {
		err = os.WriteFile(path, []byte(src), 0644)
	}
	if err != nil {
		failures[filepath.Base(path)] = err
		s.warn("⚠️  Failed to write %s: %v", path, err)
	}
	return err
}

// checkRequested validates a subset request against the catalog listing and
// names every missing table at once.
func checkRequested(all, requested []string) error {
	known := make(map[string]bool, len(all))
	for _, name := range all {
		known[name] = true
	}
	var missing []string
	for _, name := range requested {
		if !known[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &schema.TableNotFoundError{Tables: missing}
	}
	return nil
}

func (s *Service) progress(format string, args ...interface{}) {
	if !s.quiet {
		color.Green(format, args...)
	}
}

func (s *Service) warn(format string, args ...interface{}) {
	if !s.quiet {
		color.Yellow(format, args...)
	}
}
