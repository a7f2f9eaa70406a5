package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/dialogue-engine/pkg/dialogue"
	"github.com/jwebster45206/dialogue-engine/pkg/tags"
	"gopkg.in/yaml.v2"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dialogue.json|dialogue.yaml> [tags.json]\n", os.Args[0])
		os.Exit(1)
	}

	validator := &GraphValidator{}
	failed := false

	if err := validator.validateGraphFile(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		failed = true
	}
	if len(os.Args) > 2 {
		if err := validator.validateTagFile(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}

	fmt.Println("Dialogue files are valid!")
}

type GraphValidator struct {
	errors []string
}

func (v *GraphValidator) validateGraphFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	var doc dialogue.Document
	if dialogue.IsYAML(filename) {
		data, err := v.readFile(filename, filepath.Ext(filename))
		if err != nil {
			return err
		}
		if err := yaml.UnmarshalStrict(data, &doc); err != nil {
			return fmt.Errorf("file %s failed strict YAML unmarshaling: %w", filename, err)
		}
	} else {
		data, err := v.readJSON(filename)
		if err != nil {
			return err
		}
		if err := strictDecode(data, &doc); err != nil {
			return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
		}
	}

	v.errors = nil
	for problem := range doc.Validate() {
		v.addError(problem)
	}
	v.validateText(&doc)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *GraphValidator) validateTagFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := v.readJSON(filename)
	if err != nil {
		return err
	}

	var f tags.File
	if err := strictDecode(data, &f); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.errors = nil
	seen := make(map[string]bool)
	for i, t := range f.Tags {
		switch {
		case t.Name == "":
			v.addError(fmt.Sprintf("tag %d has no name", i))
		case seen[t.Name]:
			v.addError(fmt.Sprintf("duplicate tag name %s (only the first is used)", t.Name))
		}
		seen[t.Name] = true
		if len(t.Lines) == 0 && t.Parent == "" {
			v.addError(fmt.Sprintf("tag %s has no lines and no parent", t.Name))
		}
	}

	reg := tags.NewRegistry(f.Tags, nil)
	for problem := range reg.Validate() {
		v.addError(problem)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// readJSON checks the filename format and that the file holds valid JSON
func (v *GraphValidator) readJSON(filename string) ([]byte, error) {
	data, err := v.readFile(filename, ".json")
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("file %s contains invalid JSON", filename)
	}
	return data, nil
}

func (v *GraphValidator) readFile(filename, ext string) ([]byte, error) {
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ext) {
		return nil, fmt.Errorf("dialogue file must have %s extension: %s", ext, baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !isValidFilename(nameWithoutExt) {
		return nil, fmt.Errorf("dialogue filename '%s' must be lowercase snake_case (e.g., camp_night%s, not camp-night%s or CampNight%s)", baseName, ext, ext, ext)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return data, nil
}

// validateText flags nodes and options a player could not read
func (v *GraphValidator) validateText(doc *dialogue.Document) {
	for _, n := range doc.Nodes {
		if strings.TrimSpace(n.Line) == "" {
			v.addError(fmt.Sprintf("node %s has an empty line", n.GUID))
		}
		for i, opt := range n.Options {
			if strings.TrimSpace(opt.Text) == "" {
				v.addError(fmt.Sprintf("node %s option %d has no text", n.GUID, i))
			}
			if opt.Mode() == dialogue.ModeDice && strings.TrimSpace(opt.DicePrompt) == "" {
				v.addError(fmt.Sprintf("node %s option %d is a dice check without a prompt", n.GUID, i))
			}
		}
	}
}

func (v *GraphValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func strictDecode(data []byte, out any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidFilename(name string) bool {
	// Allow 'x.' prefix for experimental dialogues
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
