package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-portal/pkg/branding"
)

type brandCmd struct {
	Page   string `arg:"" type:"existingfile" help:"HTML page to rewrite."`
	Rules  string `type:"existingfile" help:"YAML branding rules (defaults to the built-in login page rules)."`
	Output string `short:"o" type:"path" help:"Destination file (defaults to rewriting the page in place)."`
}

func (cmd *brandCmd) Run() error {
	rules, err := loadBrandingRules(cmd.Rules)
	if err != nil {
		return err
	}
	page, err := os.ReadFile(cmd.Page) //nolint:gosec
	if err != nil {
		return fmt.Errorf("portalctl: read page: %w", err)
	}
	out, applied, err := branding.NewRewriter(rules).RewriteCount(page)
	if err != nil {
		return fmt.Errorf("portalctl: rewrite %s: %w", cmd.Page, err)
	}
	dest := cmd.Output
	if dest == "" {
		dest = cmd.Page
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return fmt.Errorf("portalctl: write %s: %w", dest, err)
	}
	fmt.Fprintf(os.Stdout, "✓ Applied %d branding rules to %s\n", applied, dest)
	return nil
}

func loadBrandingRules(path string) ([]branding.Rule, error) {
	if path == "" {
		return branding.DefaultRules(), nil
	}
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("portalctl: open rules: %w", err)
	}
	defer file.Close()
	rules, err := branding.DecodeRules(file)
	if err != nil {
		return nil, fmt.Errorf("portalctl: decode rules %s: %w", path, err)
	}
	return rules, nil
}
