// Package report renders statistics and snapshots as JSON or YAML documents.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/expense-manager/internal/fileutils"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/models"

	"gopkg.in/yaml.v3"
)

// Format is an output document format.
type Format string

// Supported formats
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml, case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", value)
	}
}

// Generator renders values in a document format.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Generator{logger: logger.WithField(logging.FieldComponent, "report")}
}

// Generate renders v in the given format.
func (g *Generator) Generate(v interface{}, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.generateJSON(v)
	case FormatYAML:
		return g.generateYAML(v)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteFile renders v and writes it to path.
func (g *Generator) WriteFile(path string, v interface{}, format Format) error {
	data, err := g.Generate(v, format)
	if err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomic(path, data, models.PermissionExportFile); err != nil {
		g.logger.WithError(err).Error("Failed to write report", logging.F(logging.FieldFile, path))
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	g.logger.Info("Report written",
		logging.F(logging.FieldFile, path),
		logging.F("format", string(format)))
	return nil
}

func (g *Generator) generateJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) generateYAML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return buf.Bytes(), nil
}
