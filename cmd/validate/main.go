package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/persona"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <personas.yaml> [more.yaml...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &CatalogValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

// CatalogValidator adds naming conventions on top of persona.Catalog.Validate.
type CatalogValidator struct {
	errors []string
}

func (v *CatalogValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	ext := filepath.Ext(filename)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("persona file must have .yaml or .yml extension: %s", filepath.Base(filename))
	}

	catalog, err := persona.LoadFile(filename)
	if err != nil {
		return err
	}

	v.errors = nil
	v.validateCatalog(catalog)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *CatalogValidator) validateCatalog(c *persona.Catalog) {
	histories := make(map[string]string)
	for _, p := range c.Personas {
		if !isValidKey(p.Key) {
			v.addError(fmt.Sprintf("persona key '%s' should be lowercase kebab-case", p.Key))
		}
		v.validateVarName(p.Key, "history_key", p.HistoryKey)
		v.validateVarName(p.Key, "artifact_key", p.ArtifactKey)

		if other, ok := histories[p.HistoryKey]; ok {
			v.addError(fmt.Sprintf("personas '%s' and '%s' share history_key '%s'", other, p.Key, p.HistoryKey))
		}
		histories[p.HistoryKey] = p.Key

		if p.Backend.URL == "" && p.Backend.AgentID == "" {
			v.addError(fmt.Sprintf("persona '%s' has no backend url or agent_id; it will always answer with its unconfigured line", p.Key))
		}
	}
}

func (v *CatalogValidator) validateVarName(key, field, name string) {
	if name == "" {
		return
	}
	if !validVarRegex.MatchString(name) {
		v.addError(fmt.Sprintf("persona '%s' %s '%s' should be UPPER_SNAKE_CASE", key, field, name))
	}
}

func (v *CatalogValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)
	validVarRegex = regexp.MustCompile(`^[A-Z][A-Z0-9_]*[A-Z0-9]$|^[A-Z]$`)
)

func isValidKey(key string) bool {
	return validKeyRegex.MatchString(key)
}
