package render

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	_ "embed"

	"github.com/spigell/cv-tailor/internal/assemble"
)

// The delimiters avoid clashing with LaTeX's braces.
const (
	delimLeft  = "[["
	delimRight = "]]"
)

//go:embed resume.tex.tmpl
var defaultTemplate string

var funcs = template.FuncMap{
	"latex":       Escape,
	"headerTags":  headerTags,
	"displayName": displayName,
	"dateRange":   dateRange,
	"joinItems":   joinItems,
}

// WriteLaTeX renders the context through the template at templatePath (the
// built-in resume template when empty) and writes the result to outPath.
func WriteLaTeX(rc assemble.RenderContext, templatePath, outPath string) error {
	source := defaultTemplate
	name := "resume.tex.tmpl"

	if templatePath != "" {
		raw, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("reading template: %w", err)
		}
		source = string(raw)
		name = filepath.Base(templatePath)
	}

	tmpl, err := template.New(name).Delims(delimLeft, delimRight).Funcs(funcs).Parse(source)
	if err != nil {
		return fmt.Errorf("parsing template %s: %w", name, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	if err := tmpl.Execute(out, rc); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}

	return nil
}
