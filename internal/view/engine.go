// Package view renders html/template views from a list of fs.FS roots.
//
// Views may include other files with {{template "<ref>" .}}: a reference
// that names no defined template is resolved as a file. "/x" resolves
// against the base directory, "./x" and "../x" against the including
// file, and bare names are searched upwards from the including file's
// directory and then at the top of every root. The ".html" extension is
// appended when missing. The first definition of a name wins, so a page
// overrides the {{block}} defaults of the layout it includes.
//
// A view may have a companion stylesheet next to it; its CSS is injected
// into the rendered page before the first </head>.
package view

import (
	"bytes"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Extension is appended to view and include names that have none.
const Extension = ".html"

// Root is a named tree of view files.
type Root struct {
	Name string
	FS   fs.FS
}

// Engine compiles and renders views.
type Engine struct {
	roots        []Root
	base         *Root
	cache        *Cache
	cacheEnabled bool
	stylesheets  StylesheetCompiler
	funcs        template.FuncMap
	onCompile    func(kind string)
}

// Option customises an Engine.
type Option func(*Engine)

// WithCache turns the compiled template cache on or off. When off, the
// cache is reset before every render.
func WithCache(enabled bool) Option {
	return func(e *Engine) {
		e.cacheEnabled = enabled
	}
}

// WithBaseFS sets the tree that absolute include paths resolve against.
func WithBaseFS(fsys fs.FS) Option {
	return func(e *Engine) {
		if fsys != nil {
			e.base = &Root{Name: "basedir", FS: fsys}
		}
	}
}

// WithStylesheets replaces the PlainCSS companion stylesheet compiler.
func WithStylesheets(sc StylesheetCompiler) Option {
	return func(e *Engine) {
		if sc != nil {
			e.stylesheets = sc
		}
	}
}

// WithFuncs adds template functions on top of Funcs.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for name, fn := range funcs {
			e.funcs[name] = fn
		}
	}
}

// WithCompileHook registers a callback run on every compilation with
// "template" or "stylesheet".
func WithCompileHook(fn func(kind string)) Option {
	return func(e *Engine) {
		e.onCompile = fn
	}
}

// New returns an engine searching roots in order. Caching is on by
// default.
func New(roots []Root, opts ...Option) *Engine {
	e := &Engine{
		roots:        roots,
		cache:        NewCache(),
		cacheEnabled: true,
		stylesheets:  PlainCSS{},
		funcs:        Funcs(),
		onCompile:    func(string) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache exposes the engine's cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Exists reports whether a view named name is found in any root.
func (e *Engine) Exists(name string) bool {
	_, err := e.find(name)
	return err == nil
}

// Render renders the view name with data to w.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	if !e.cacheEnabled {
		e.cache.Reset()
	}

	src, err := e.find(name)
	if err != nil {
		return err
	}

	t, err := e.template(src)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return errors.Wrapf(err, "render view %s", src)
	}

	css, ok, err := e.stylesheet(src)
	if err != nil {
		return err
	}

	html := buf.String()
	if ok {
		html = InjectCSS(html, css)
	}

	_, err = io.WriteString(w, html)
	return err
}

// RenderString renders an inline template that is not backed by a file.
// Only absolute includes can be resolved from it.
func (e *Engine) RenderString(w io.Writer, text string, data any) error {
	t, err := e.compile("inline", []byte(text), nil)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

// InjectCSS inserts css in a <style> element before the first </head>.
// Pages without a head are returned unchanged.
func InjectCSS(html, css string) string {
	return strings.Replace(html, "</head>", "<style>"+css+"</style></head>", 1)
}

func (e *Engine) template(src *source) (*template.Template, error) {
	key := src.String()
	if t, ok := e.cache.Template(key); ok {
		return t, nil
	}

	content, err := fs.ReadFile(src.root.FS, src.path)
	if err != nil {
		return nil, errors.Wrapf(err, "read view %s", key)
	}

	t, err := e.compile(key, content, src)
	if err != nil {
		return nil, err
	}
	e.onCompile("template")

	return e.cache.StoreTemplate(key, t), nil
}

func (e *Engine) stylesheet(src *source) (string, bool, error) {
	companion := &source{
		root: src.root,
		path: strings.TrimSuffix(src.path, path.Ext(src.path)) + e.stylesheets.Extension(),
	}
	key := companion.String()

	if css, ok := e.cache.Stylesheet(key); ok {
		return css, true, nil
	}

	content, err := fs.ReadFile(companion.root.FS, companion.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "read stylesheet %s", key)
	}

	css, err := e.stylesheets.Compile(key, content)
	if err != nil {
		return "", false, errors.Wrapf(err, "compile stylesheet %s", key)
	}
	e.onCompile("stylesheet")

	return e.cache.StoreStylesheet(key, css), true, nil
}

// find locates a view by name in the roots, in order.
func (e *Engine) find(name string) (*source, error) {
	p := withExtension(strings.TrimPrefix(path.Clean("/"+name), "/"))
	for i := range e.roots {
		if exists(e.roots[i].FS, p) {
			return &source{root: &e.roots[i], path: p}, nil
		}
	}
	return nil, errors.Errorf("failed to lookup view %q in views %s", name, e.rootNames())
}

func (e *Engine) rootNames() string {
	names := make([]string, len(e.roots))
	for i, r := range e.roots {
		names[i] = r.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func withExtension(p string) string {
	if path.Ext(p) == "" {
		return p + Extension
	}
	return p
}

func exists(fsys fs.FS, p string) bool {
	if !fs.ValidPath(p) {
		return false
	}
	info, err := fs.Stat(fsys, p)
	return err == nil && !info.IsDir()
}
