// Package compile runs the whole pipeline for one schema: load, parse,
// optionally cross-check, render and write.
package compile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/scintirete/protodts/internal/check"
	"github.com/scintirete/protodts/internal/config"
	"github.com/scintirete/protodts/internal/load"
	"github.com/scintirete/protodts/internal/openapi"
	"github.com/scintirete/protodts/internal/parser"
	"github.com/scintirete/protodts/internal/schema"
	"github.com/scintirete/protodts/internal/tsgen"
	"github.com/scintirete/protodts/internal/typemap"
)

// Now stamps generated headers. Tests replace it.
var Now = time.Now

// Run compiles cfg.Input and writes the result, returning the output path.
// Skipped constructs are logged as warnings and only fail the run when
// cfg.Strict is set.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
	logger = logger.With("component", "compile")

	src, err := load.Load(cfg.Input)
	if err != nil {
		return "", err
	}

	result := parser.Parse(src.Text)
	for _, d := range result.Skipped {
		logger.Warn("Skipped unsupported construct.",
			"source", src.Path, "pos", d.Pos.String(), "kind", d.Kind, "name", d.Name, "reason", d.Reason)
	}
	for _, ref := range unresolved(result.Model) {
		logger.Warn("Type is not declared in the schema, emitting it verbatim.",
			"source", src.Path, "field", ref.field, "type", ref.typ)
	}
	if cfg.Strict {
		if err := result.Err(); err != nil {
			return "", fmt.Errorf("schema %s has unsupported constructs: %w", src.Path, err)
		}
	}

	if cfg.Check {
		if err := crossCheck(src, result.Model, logger); err != nil {
			return "", err
		}
	}

	data, err := Render(ctx, cfg, src.Path, result.Model)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	out := cfg.OutputPath()
	if err := WriteFile(out, data); err != nil {
		return "", err
	}
	logger.Info("Wrote declarations.",
		"path", out,
		"target", cfg.Target,
		"enums", len(result.Model.Enums),
		"messages", len(result.Model.Messages),
		"services", len(result.Model.Services),
		"skipped", len(result.Skipped))
	return out, nil
}

// Render produces the output document for the configured target.
func Render(ctx context.Context, cfg *config.Config, source string, m *schema.Model) ([]byte, error) {
	switch cfg.Target {
	case config.TargetTS:
		out := tsgen.Generate(m, tsgen.Options{
			Source:        source,
			Timestamp:     Now(),
			OmitTimestamp: cfg.OmitTimestamp,
			Types:         typemap.TypeScript().With(cfg.TypeOverrides),
			ClientSuffix:  cfg.ClientSuffix,
			ResultWrapper: cfg.ResultWrapper,
		})
		return []byte(out), nil
	case config.TargetOpenAPI:
		doc, err := openapi.Generate(ctx, m, openapi.Options{Source: source})
		if err != nil {
			return nil, err
		}
		return openapi.Marshal(doc, openapi.FormatForPath(cfg.OutputPath()))
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownTarget, cfg.Target)
	}
}

type reference struct {
	field string
	typ   string
}

// unresolved lists field types that are neither primitives nor declared in m.
func unresolved(m *schema.Model) []reference {
	var refs []reference
	for _, msg := range m.Messages {
		for _, f := range msg.Fields {
			if typemap.IsScalar(f.Type) || m.Declared(f.Type) {
				continue
			}
			refs = append(refs, reference{field: msg.Name + "." + f.Name, typ: f.Type})
		}
	}
	return refs
}

func crossCheck(src *load.Source, m *schema.Model, logger *slog.Logger) error {
	report, err := check.Check(src.Path, src.Text)
	if err != nil {
		return err
	}
	for _, e := range report.Errors {
		logger.Warn("Protobuf compiler rejected schema.", "source", src.Path, "error", e)
	}
	for _, d := range report.Missing(m) {
		logger.Warn("Declaration dropped by parser.", "source", src.Path, "kind", d.Kind, "name", d.Name)
	}
	return nil
}

// WriteFile writes data to path, creating parent directories and replacing
// any existing file.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
