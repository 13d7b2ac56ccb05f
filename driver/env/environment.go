package env

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/go-ddr/ddrgen"
)

// loadMode requests everything Element and TypeMirror need: type
// information for resolution and mirroring, syntax trees for doc
// comments and annotation directives.
const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedDeps | packages.NeedImports

// Environment is a read-only facade over a loaded set of Go packages.
type Environment struct {
	fset     *token.FileSet
	pkgs     []*packages.Package
	byPath   map[string]*packages.Package
	docByPos map[token.Pos]*ast.CommentGroup
}

// Load resolves patterns (the same patterns "go build"/"go list" accept,
// e.g. "./...") into an Environment.
func Load(patterns ...string) (*Environment, error) {
	cfg := &packages.Config{Mode: loadMode}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("env: load: %w", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("env: one or more packages failed to load")
	}
	return newEnvironment(pkgs), nil
}

// newEnvironment wires up an Environment from already-loaded packages,
// shared by Load and by tests that construct packages.Package values
// directly (via go/types.Config.Check) to avoid shelling out to the Go
// toolchain.
func newEnvironment(pkgs []*packages.Package) *Environment {
	e := &Environment{
		byPath:   map[string]*packages.Package{},
		docByPos: map[token.Pos]*ast.CommentGroup{},
	}
	for _, pkg := range pkgs {
		e.pkgs = append(e.pkgs, pkg)
		e.byPath[pkg.PkgPath] = pkg
		if e.fset == nil {
			e.fset = pkg.Fset
		}
		for _, f := range pkg.Syntax {
			indexDocComments(f, e.docByPos)
		}
	}
	return e
}

// indexDocComments records, for every type, value, and function
// declaration in f, the doc comment that applies to it (the spec's
// declaration carrying its own Doc, falling back to its enclosing
// GenDecl's).
func indexDocComments(f *ast.File, out map[token.Pos]*ast.CommentGroup) {
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					if doc := firstNonNil(s.Doc, d.Doc); doc != nil {
						out[s.Name.Pos()] = doc
					}
				case *ast.ValueSpec:
					if doc := firstNonNil(s.Doc, d.Doc); doc != nil {
						for _, name := range s.Names {
							out[name.Pos()] = doc
						}
					}
				}
			}
		case *ast.FuncDecl:
			if d.Doc != nil {
				out[d.Name.Pos()] = d.Doc
			}
		}
	}
}

func firstNonNil(a, b *ast.CommentGroup) *ast.CommentGroup {
	if a != nil {
		return a
	}
	return b
}

// Resolve looks up a canonical name ("import/path.Name") and returns the
// Element it names (spec §6: "resolve canonical name to class/type
// element").
func (e *Environment) Resolve(canonical string) (Element, bool) {
	pkgPath, name, ok := splitCanonical(canonical)
	if !ok {
		return Element{}, false
	}
	pkg, ok := e.byPath[pkgPath]
	if !ok || pkg.Types == nil {
		return Element{}, false
	}
	obj := pkg.Types.Scope().Lookup(name)
	if obj == nil {
		return Element{}, false
	}
	return newElement(e, pkg, obj), true
}

func splitCanonical(canonical string) (pkgPath, name string, ok bool) {
	i := strings.LastIndex(canonical, ".")
	if i < 0 {
		return "", "", false
	}
	return canonical[:i], canonical[i+1:], true
}

// AllElements returns every package-level declared element across every
// loaded package, for callers (the CLI's annotation discovery pass) that
// need to scan for annotated declarations rather than resolve one
// canonical name at a time.
func (e *Environment) AllElements() []Element {
	var out []Element
	for _, pkg := range e.pkgs {
		if pkg.Types == nil {
			continue
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			out = append(out, newElement(e, pkg, scope.Lookup(name)))
		}
	}
	return out
}

// Options returns the ddr.* option map found in any loaded package's
// package-level doc comment, written as a "//ddr:options key=\"v\" ..."
// directive (spec §6: "option map for driver configuration"). The
// driver/options YAML loader remains the normal configuration path; this
// is the in-source alternative for options that should travel with the
// annotated package itself.
func (e *Environment) Options() map[string]string {
	out := map[string]string{}
	for _, pkg := range e.pkgs {
		for _, f := range pkg.Syntax {
			if f.Doc == nil {
				continue
			}
			for _, c := range f.Doc.List {
				text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
				if !strings.HasPrefix(text, "ddr:options") {
					continue
				}
				if a, ok := parseDirective(strings.TrimPrefix(text, "ddr:")); ok {
					for k, v := range a.Values {
						out[k] = v
					}
				}
			}
		}
	}
	return out
}

// Element is a resolved declaration: a type, function, field, or method.
type Element struct {
	env *Environment
	pkg *packages.Package
	obj types.Object
}

func newElement(env *Environment, pkg *packages.Package, obj types.Object) Element {
	return Element{env: env, pkg: pkg, obj: obj}
}

// CanonicalName returns the element's fully qualified name.
func (e Element) CanonicalName() string {
	return e.pkg.PkgPath + "." + e.obj.Name()
}

// Name returns the element's simple (unqualified) name.
func (e Element) Name() string { return e.obj.Name() }

// IsExported reports whether the element's name is exported.
func (e Element) IsExported() bool { return e.obj.Exported() }

// Location returns the element's declaration site, for diagnostics.
func (e Element) Location() ddr.Location {
	pos := e.env.fset.Position(e.obj.Pos())
	return ddr.Location{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// Type returns the TypeMirror for this element's own type.
func (e Element) Type() TypeMirror { return TypeMirror{t: e.obj.Type()} }

// Methods returns the method set declared directly on a named type
// element (spec §6: "a type element yields method/field/constructor
// lists").
func (e Element) Methods() []Element {
	named, ok := e.obj.Type().(*types.Named)
	if !ok {
		return nil
	}
	out := make([]Element, 0, named.NumMethods())
	for i := 0; i < named.NumMethods(); i++ {
		out = append(out, newElement(e.env, e.pkg, named.Method(i)))
	}
	return out
}

// Fields returns the field list of a struct-backed type element.
func (e Element) Fields() []Element {
	named, ok := e.obj.Type().(*types.Named)
	if !ok {
		return nil
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	out := make([]Element, 0, st.NumFields())
	for i := 0; i < st.NumFields(); i++ {
		out = append(out, newElement(e.env, e.pkg, st.Field(i)))
	}
	return out
}

// DocComment returns the element's full doc comment text and its first
// sentence. Both are empty if the declaration has no doc comment.
func (e Element) DocComment() (full, firstSentence string) {
	cg := e.env.docByPos[e.obj.Pos()]
	if cg == nil {
		return "", ""
	}
	full = cg.Text()
	return full, firstSentenceOf(full)
}

// firstSentenceOf extracts the first sentence from a doc comment: the
// span up to and including the first '.' followed by whitespace or
// end-of-text. This is a fixed-rule stand-in for spec §6's
// locale-configured sentence-break iterator — the example pack carries
// no general-purpose Unicode sentence segmenter (see DESIGN.md).
func firstSentenceOf(text string) string {
	text = strings.TrimSpace(text)
	for i := 0; i < len(text); i++ {
		if text[i] != '.' {
			continue
		}
		if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n' || text[i+1] == '\t' {
			return strings.TrimSpace(text[:i+1])
		}
	}
	return text
}

// Annotations parses every "//ddr:Name ..." directive line out of e's doc
// comment (spec §6: "annotation mirrors exposing element-value entries").
func (e Element) Annotations() []Annotation {
	cg := e.env.docByPos[e.obj.Pos()]
	if cg == nil {
		return nil
	}
	var out []Annotation
	for _, c := range cg.List {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		if !strings.HasPrefix(text, "ddr:") {
			continue
		}
		if a, ok := parseDirective(strings.TrimPrefix(text, "ddr:")); ok {
			out = append(out, a)
		}
	}
	return out
}
