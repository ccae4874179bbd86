package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-portal/components/portal"
)

type scaffoldCmd struct {
	Name         string   `required:"" help:"Display name of the section."`
	Code         string   `help:"Section code (defaults to the snake_case name)."`
	Icon         string   `help:"Font Awesome icon class (fa-*)."`
	Sequence     int      `default:"10" help:"Ordering sequence."`
	Group        []string `help:"Group xmlids allowed to see the section (use multiple --group flags)."`
	HasChart     bool     `name:"has-chart" help:"The section also contributes charts."`
	Description  string   `help:"One-line description."`
	ManifestPath string   `name:"manifest" required:"" type:"path" help:"Section manifest YAML to update."`
	Overwrite    bool     `help:"Replace an existing section with the same code."`
}

func (cmd *scaffoldCmd) Run() error {
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("portalctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	section := cmd.definition()
	if err := portal.ValidateSection(section); err != nil {
		return fmt.Errorf("portalctl: section %s: %w", section.Code, err)
	}
	if err := upsertSection(doc, section, cmd.Overwrite); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added section %s to %s\n", section.Code, manifestPath)
	return nil
}

func (cmd *scaffoldCmd) definition() portal.SectionDefinition {
	code := cmd.Code
	if code == "" {
		code = strcase.ToSnake(cmd.Name)
	}
	return portal.SectionDefinition{
		Code:        code,
		Name:        cmd.Name,
		Icon:        cmd.Icon,
		Sequence:    cmd.Sequence,
		Groups:      cmd.Group,
		HasChart:    cmd.HasChart,
		Description: cmd.Description,
	}
}

func upsertSection(doc *portal.SectionManifestDocument, section portal.SectionDefinition, overwrite bool) error {
	replaced := false
	for idx := range doc.Sections {
		if doc.Sections[idx].Code != section.Code {
			continue
		}
		if !overwrite {
			return fmt.Errorf("portalctl: manifest already defines section %s (use --overwrite to replace)", section.Code)
		}
		doc.Sections[idx] = section
		replaced = true
	}
	if !replaced {
		doc.Sections = append(doc.Sections, section)
	}
	sort.SliceStable(doc.Sections, func(i, j int) bool {
		a, b := doc.Sections[i], doc.Sections[j]
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.Code < b.Code
	})
	return nil
}

func loadOrInitManifest(path string) (*portal.SectionManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &portal.SectionManifestDocument{
				Version:  portal.ManifestVersion,
				Sections: []portal.SectionDefinition{},
				Source:   path,
			}, nil
		}
		return nil, fmt.Errorf("portalctl: stat manifest: %w", err)
	}
	return portal.ReadManifest(path)
}

func writeManifest(path string, doc *portal.SectionManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("portalctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("portalctl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return portal.EncodeManifest(file, doc)
}
