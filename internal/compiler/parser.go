package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/mentor/pkg/domain"
)

// Format is the encoding of a section document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the decoder for a section file from its extension.
// ".oms" files carry YAML.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".oms":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported section file '%s'", filepath.Base(path))
}

// Parser is responsible for converting raw bytes into a Section.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a section document. Unknown keys are rejected.
func (p *Parser) Parse(data []byte, format Format) (*domain.Section, error) {
	var section domain.Section
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&section); err != nil {
			return nil, fmt.Errorf("failed to parse section: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&section); err != nil {
			return nil, fmt.Errorf("failed to parse section: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown section format '%s'", format)
	}

	for i := range section.Cases {
		c := &section.Cases[i]
		c.ID = strings.TrimSpace(c.ID)
		c.Next = strings.TrimSpace(c.Next)
		if c.ID == "" {
			return nil, fmt.Errorf("case #%d: %w", i+1, domain.ErrEmptyCaseID)
		}
	}
	section.Start = strings.TrimSpace(section.Start)
	section.Policy = section.Policy.Normalize()
	return &section, nil
}

// DeriveSectionID returns a stable identity for a section that declares none.
// The same location always yields the same ID.
func DeriveSectionID(location string) string {
	if abs, err := filepath.Abs(location); err == nil {
		location = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(location))).String()
}
