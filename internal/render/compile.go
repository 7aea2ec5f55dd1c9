package render

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const compiler = "xelatex"

// Compile runs the LaTeX compiler on the given .tex file. Compilation
// failures (missing fonts, invalid escape sequences) are reported upward with
// the tail of the compiler output; they are never retried.
func Compile(ctx context.Context, texPath string) error {
	dir := filepath.Dir(texPath)

	cmd := exec.CommandContext(ctx, compiler, "-interaction=nonstopmode", "-halt-on-error", filepath.Base(texPath))
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed for %s: %w\n%s", compiler, texPath, err, tail(string(output), 20))
	}

	return nil
}

func tail(s string, lines int) string {
	all := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(all) > lines {
		all = all[len(all)-lines:]
	}
	return strings.Join(all, "\n")
}
