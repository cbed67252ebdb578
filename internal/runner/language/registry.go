package language

import (
	"strings"

	"coderun/internal/runner/workspace"
	appErr "coderun/pkg/errors"

	"github.com/google/shlex"
)

const (
	placeholderSrc = "{src}"
	placeholderBin = "{bin}"
)

// CommandSet is the resolved argv for one job.
// Compile is nil for languages without a compile step.
type CommandSet struct {
	Language     Language
	SourcePath   string
	ArtifactPath string
	Compile      []string
	Execute      []string
	Version      []string
}

type entry struct {
	spec    Spec
	compile []string
	run     []string
	version []string
}

// Registry resolves language tags to command sets.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	layout  workspace.Layout
	entries map[Language]entry
	order   []Language
}

// NewRegistry builds the registry from the built-in table with overrides applied.
// Templates are split once here so a broken template fails at startup.
func NewRegistry(layout workspace.Layout, overrides []Override) (*Registry, error) {
	specs := Builtins()
	index := make(map[Language]int, len(specs))
	for i, s := range specs {
		index[s.ID] = i
	}

	for _, o := range overrides {
		id := Language(strings.TrimSpace(o.ID))
		i, ok := index[id]
		if !ok {
			return nil, appErr.Newf(appErr.LanguageNotSupported, "unknown language in overrides: %q", o.ID)
		}
		s := specs[i]
		if o.CompileCmd != "" {
			if !s.Compiled() {
				return nil, appErr.Newf(appErr.InvalidParams, "language %s has no compile step", id)
			}
			s.CompileCmdTpl = o.CompileCmd
		}
		if o.RunCmd != "" {
			s.RunCmdTpl = o.RunCmd
		}
		if o.VersionCmd != "" {
			s.VersionCmd = o.VersionCmd
		}
		specs[i] = s
	}

	r := &Registry{
		layout:  layout.WithDefaults(),
		entries: make(map[Language]entry, len(specs)),
		order:   make([]Language, 0, len(specs)),
	}
	for _, s := range specs {
		e, err := compileEntry(s)
		if err != nil {
			return nil, err
		}
		r.entries[s.ID] = e
		r.order = append(r.order, s.ID)
	}
	return r, nil
}

func compileEntry(s Spec) (entry, error) {
	e := entry{spec: s}
	var err error
	if s.Compiled() {
		if e.compile, err = splitTemplate(s, "compile", s.CompileCmdTpl); err != nil {
			return entry{}, err
		}
	}
	if e.run, err = splitTemplate(s, "run", s.RunCmdTpl); err != nil {
		return entry{}, err
	}
	if e.version, err = splitTemplate(s, "version", s.VersionCmd); err != nil {
		return entry{}, err
	}
	return e, nil
}

func splitTemplate(s Spec, kind, tpl string) ([]string, error) {
	fields, err := shlex.Split(tpl)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "parse %s command template for %s failed", kind, s.ID)
	}
	if len(fields) == 0 {
		return nil, appErr.Newf(appErr.InvalidParams, "%s command template for %s is empty", kind, s.ID)
	}
	if s.ArtifactExt == "" && strings.Contains(tpl, placeholderBin) {
		return nil, appErr.Newf(appErr.InvalidParams, "%s command template for %s references %s but the language has no artifact", kind, s.ID, placeholderBin)
	}
	return fields, nil
}

// Lookup returns the spec for a tag.
func (r *Registry) Lookup(tag string) (Spec, error) {
	e, ok := r.entries[Language(tag)]
	if !ok {
		return Spec{}, appErr.UnsupportedLanguage(tag)
	}
	return e.spec, nil
}

// Resolve expands the templates of a tag for one job.
func (r *Registry) Resolve(tag, jobID string) (CommandSet, error) {
	e, ok := r.entries[Language(tag)]
	if !ok {
		return CommandSet{}, appErr.UnsupportedLanguage(tag)
	}
	src := r.layout.SourcePath(jobID, e.spec.SourceExt)
	bin := r.layout.ArtifactPath(jobID, e.spec.ArtifactExt)
	return CommandSet{
		Language:     e.spec.ID,
		SourcePath:   src,
		ArtifactPath: bin,
		Compile:      expand(e.compile, src, bin),
		Execute:      expand(e.run, src, bin),
		Version:      expand(e.version, src, bin),
	}, nil
}

// Supported lists the tags in display order.
func (r *Registry) Supported() []Language {
	out := make([]Language, len(r.order))
	copy(out, r.order)
	return out
}

// Specs lists the effective specs in display order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].spec)
	}
	return out
}

// expand substitutes paths per token, after splitting, so paths with
// spaces stay a single argument.
func expand(tokens []string, src, bin string) []string {
	if tokens == nil {
		return nil
	}
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		tok = strings.ReplaceAll(tok, placeholderSrc, src)
		tok = strings.ReplaceAll(tok, placeholderBin, bin)
		out[i] = tok
	}
	return out
}
