package diag

import (
	"path/filepath"

	lsp "github.com/sourcegraph/go-lsp"
)

// Diagnostic converts the error into an LSP diagnostic.  LSP positions are
// zero-based and the bundler reports a single point, so the range covers one
// character.
func (se *SyntaxError) Diagnostic() lsp.Diagnostic {
	start := lsp.Position{}
	if se.Line > 0 {
		start.Line = se.Line - 1
	}
	if se.Column > 0 {
		start.Character = se.Column - 1
	}

	return lsp.Diagnostic{
		Range: lsp.Range{
			Start: start,
			End:   lsp.Position{Line: start.Line, Character: start.Character + 1},
		},
		Severity: lsp.Error,
		Source:   "uts",
		Message:  se.Message,
	}
}

// PublishParams builds the `textDocument/publishDiagnostics` payload for the
// error.  Relative files are resolved against inputDir.
func (se *SyntaxError) PublishParams(inputDir string) lsp.PublishDiagnosticsParams {
	file := filepath.FromSlash(se.File)
	if !filepath.IsAbs(file) {
		file = filepath.Join(inputDir, file)
	}

	return lsp.PublishDiagnosticsParams{
		URI:         lsp.DocumentURI("file://" + filepath.ToSlash(file)),
		Diagnostics: []lsp.Diagnostic{se.Diagnostic()},
	}
}
