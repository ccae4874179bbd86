package portal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// SectionManifestDocument models a YAML manifest describing dashboard sections.
type SectionManifestDocument struct {
	Version  string              `json:"version" yaml:"version"`
	Name     string              `json:"name,omitempty" yaml:"name,omitempty"`
	Sections []SectionDefinition `json:"sections" yaml:"sections"`
	Source   string              `json:"-" yaml:"-"`
}

// LoadManifestFile reads a manifest from disk and applies it to the catalog.
func (c *SectionCatalog) LoadManifestFile(path string) (*SectionManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := c.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument adds or replaces the catalog sections listed in doc.
func (c *SectionCatalog) LoadManifestDocument(doc *SectionManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("portal: manifest document is nil")
	}
	for _, section := range doc.Sections {
		if err := c.Put(section); err != nil {
			return fmt.Errorf("portal: register section %s from %s: %w", section.Code, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without applying it.
func ReadManifest(path string) (*SectionManifestDocument, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("portal: open manifest %s: %w", path, err)
	}
	doc, err := DecodeManifest(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("portal: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader. The document is checked
// against the manifest schema before it is decoded strictly.
func DecodeManifest(r io.Reader) (*SectionManifestDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("portal: read manifest: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("portal: parse manifest: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("portal: manifest is empty")
	}
	if err := ValidateManifest(raw); err != nil {
		return nil, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var doc SectionManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("portal: manifest is empty")
		}
		return nil, fmt.Errorf("portal: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes doc as YAML.
func EncodeManifest(w io.Writer, doc *SectionManifestDocument) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("portal: encode manifest: %w", err)
	}
	return encoder.Close()
}

// Validate ensures the manifest satisfies required fields.
func (doc *SectionManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("portal: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Sections))
	for idx, section := range doc.Sections {
		if section.Code == "" {
			return fmt.Errorf("portal: manifest section at index %d is missing code", idx)
		}
		if err := section.validate(); err != nil {
			return err
		}
		if _, exists := seen[section.Code]; exists {
			return fmt.Errorf("portal: manifest duplicates section code %s", section.Code)
		}
		seen[section.Code] = struct{}{}
	}
	return nil
}

func (doc *SectionManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
