// Package resolve answers documentation queries for symbols.
//
// A symbol's comment comes from the first tier that has one:
//
//  1. the explicit inline comment;
//  2. the metadata list embedded in the symbol's library archive;
//  3. for framework and platform libraries, the locale companion archive
//     and then the bundled reference document.
//
// The first tier that carries a metadata list is authoritative for the
// archive. Failures inside the tiers are typed (see internal/errors) and
// folded into "no documentation" at this package's boundary.
package resolve

import (
	"log/slog"

	"asdocs/internal/archive"
	"asdocs/internal/asdoc"
	"asdocs/internal/dita"
	"asdocs/internal/errors"
	"asdocs/internal/fallback"
	"asdocs/internal/workspace"
)

// Engine resolves documentation against the caches of one Workspace.
// It is safe for concurrent use.
type Engine struct {
	ws     *workspace.Workspace
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger uses the workspace logger.
func NewEngine(ws *workspace.Workspace, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = ws.Logger()
	}
	return &Engine{ws: ws, logger: logger}
}

// SymbolDocumentation returns the rendered description of sym.
// Archive tiers are consulted only when allowArchiveFallback is set and
// the symbol has no inline comment.
func (e *Engine) SymbolDocumentation(sym Symbol, useMarkdown, allowArchiveFallback bool) (string, bool) {
	if sym == nil || !sym.Documentable() {
		return "", false
	}

	c, _, err := e.Comment(sym, allowArchiveFallback)
	if err != nil {
		e.fold(sym.QualifiedName(), err)
		return "", false
	}
	c.Compile(useMarkdown)
	return c.Description()
}

// ParameterDocumentation returns the rendered description of param, read
// from the @param tags of its enclosing function.
func (e *Engine) ParameterDocumentation(param Parameter, useMarkdown bool) (string, bool) {
	if param == nil {
		return "", false
	}
	fn := param.Parent()
	if fn == nil || fn.Kind() != KindFunction || !fn.Documentable() {
		return "", false
	}

	c, _, err := e.Comment(fn, true)
	if err != nil {
		e.fold(fn.QualifiedName(), err)
		return "", false
	}
	c.Compile(useMarkdown)
	return c.ParamDescription(param.BaseName())
}

// Comment returns the uncompiled comment for sym and the tier it came
// from, or the typed reason there is none. It does not check
// Documentable.
func (e *Engine) Comment(sym Symbol, allowArchiveFallback bool) (*asdoc.Comment, fallback.Origin, error) {
	if raw, ok := sym.ExplicitComment(); ok {
		return asdoc.New(raw), fallback.Origin{Tier: fallback.TierExplicit, Path: sym.ContainingFilePath()}, nil
	}

	path := sym.ContainingFilePath()
	if !allowArchiveFallback || !archive.IsArchive(path) {
		return nil, fallback.Origin{}, errors.NotFoundf(path, "%s has no inline comment", sym.QualifiedName())
	}

	list, origin, err := e.list(path)
	if err != nil {
		return nil, origin, err
	}
	c, ok := list.Comment(sym.QualifiedName())
	if !ok {
		return nil, origin, errors.NotFoundf(origin.Path, "%s is not documented", sym.QualifiedName())
	}
	return c, origin, nil
}

// list returns the authoritative metadata list for an archive: its own,
// else the fallback locator's when the archive is a recognized library.
func (e *Engine) list(path string) (*dita.List, fallback.Origin, error) {
	a, err := e.ws.Archives.Open(path)
	if err == nil && a.Documented() {
		return a.Docs, fallback.Origin{Tier: fallback.TierArchive, Path: a.Path}, nil
	}
	if err != nil {
		e.logger.Debug("Archive tier unavailable", "path", path, "code", string(errors.CodeOf(err)))
	}

	if !e.ws.Locator.Applies(path) {
		if err != nil {
			return nil, fallback.Origin{}, err
		}
		return nil, fallback.Origin{}, errors.NotFoundf(path, "archive carries no documentation metadata")
	}
	return e.ws.Locator.Find(path)
}

// Sources describes which metadata list answers lookups for an archive.
type Sources struct {
	Archive string           `json:"archive"`
	Tier    fallback.Tier    `json:"tier,omitempty"`
	Path    string           `json:"path,omitempty"`
	Entries int              `json:"entries"`
	Code    errors.ErrorCode `json:"code,omitempty"`
	Message string           `json:"message,omitempty"`

	List *dita.List `json:"-"`
}

// Sources reports the authoritative tier for the archive at path.
func (e *Engine) Sources(path string) Sources {
	s := Sources{Archive: path}
	if !archive.IsArchive(path) {
		s.Code = errors.NotFound
		s.Message = "not a library archive"
		return s
	}

	list, origin, err := e.list(path)
	if err != nil {
		s.Code = errors.CodeOf(err)
		s.Message = err.Error()
		return s
	}
	s.Tier = origin.Tier
	s.Path = origin.Path
	s.Entries = list.Len()
	s.List = list
	return s
}

func (e *Engine) fold(name string, err error) {
	e.logger.Debug("No documentation",
		"symbol", name,
		"code", string(errors.CodeOf(err)),
		"error", err.Error(),
	)
}
