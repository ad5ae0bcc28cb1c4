package view

import (
	"html/template"
	"io/fs"
	"path"
	"strings"
	"text/template/parse"

	"github.com/pkg/errors"
)

// Configuration errors raised by include resolution.
var (
	ErrBaseDirRequired  = errors.New(`the "basedir" option is required to use includes and extends with "absolute" paths`)
	ErrFilenameRequired = errors.New(`the "filename" option is required to use includes and extends with "relative" paths`)
)

// source identifies a view file.
type source struct {
	root *Root
	path string
}

func (s *source) String() string {
	if s == nil {
		return "inline"
	}
	return s.root.Name + "/" + s.path
}

// compiler assembles one template set from a file and its includes.
type compiler struct {
	engine  *Engine
	set     *template.Template
	origin  map[string]*source
	scanned map[string]bool
}

type reference struct {
	name string
	from *source
}

func (e *Engine) compile(name string, content []byte, from *source) (*template.Template, error) {
	set, err := template.New(name).Funcs(e.funcs).Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "parse view %s", from)
	}

	c := &compiler{
		engine:  e,
		set:     set,
		origin:  make(map[string]*source),
		scanned: make(map[string]bool),
	}
	for _, t := range set.Templates() {
		c.origin[t.Name()] = from
	}

	for {
		refs := c.unresolved()
		if len(refs) == 0 {
			return set, nil
		}
		for _, ref := range refs {
			if set.Lookup(ref.name) != nil {
				continue
			}
			if err := c.include(ref); err != nil {
				return nil, err
			}
		}
	}
}

// unresolved collects template references, in templates not scanned yet,
// to names the set does not define.
func (c *compiler) unresolved() []reference {
	var refs []reference
	for _, t := range c.set.Templates() {
		if c.scanned[t.Name()] || t.Tree == nil {
			continue
		}
		c.scanned[t.Name()] = true

		from := c.origin[t.Name()]
		walk(t.Tree.Root, func(name string) {
			if c.set.Lookup(name) == nil {
				refs = append(refs, reference{name: name, from: from})
			}
		})
	}
	return refs
}

// include parses the file ref points at and merges its templates into the
// set, keeping existing definitions.
func (c *compiler) include(ref reference) error {
	src, err := c.engine.resolveInclude(ref.name, ref.from)
	if err != nil {
		return err
	}

	content, err := fs.ReadFile(src.root.FS, src.path)
	if err != nil {
		return errors.Wrapf(err, "read include %s", src)
	}

	tmp, err := template.New(ref.name).Funcs(c.engine.funcs).Parse(string(content))
	if err != nil {
		return errors.Wrapf(err, "parse include %s", src)
	}

	for _, t := range tmp.Templates() {
		if t.Tree == nil || c.set.Lookup(t.Name()) != nil {
			continue
		}
		if _, err := c.set.AddParseTree(t.Name(), t.Tree); err != nil {
			return errors.Wrapf(err, "merge include %s", src)
		}
		c.origin[t.Name()] = src
	}
	return nil
}

// resolveInclude maps an include reference to a file.
func (e *Engine) resolveInclude(ref string, from *source) (*source, error) {
	ref = strings.TrimSpace(ref)

	if !strings.HasPrefix(ref, "/") && from == nil {
		return nil, ErrFilenameRequired
	}

	switch {
	case strings.HasPrefix(ref, "/"):
		if e.base == nil {
			return nil, ErrBaseDirRequired
		}
		p := withExtension(strings.TrimPrefix(path.Clean(ref), "/"))
		if exists(e.base.FS, p) {
			return &source{root: e.base, path: p}, nil
		}

	case strings.HasPrefix(ref, "./"), strings.HasPrefix(ref, "../"):
		p := withExtension(path.Join(path.Dir(from.path), ref))
		if exists(from.root.FS, p) {
			return &source{root: from.root, path: p}, nil
		}

	default:
		name := withExtension(path.Clean(ref))
		for dir := path.Dir(from.path); ; dir = path.Dir(dir) {
			p := path.Join(dir, name)
			if exists(from.root.FS, p) {
				return &source{root: from.root, path: p}, nil
			}
			if dir == "." {
				break
			}
		}
		for i := range e.roots {
			if exists(e.roots[i].FS, name) {
				return &source{root: &e.roots[i], path: name}, nil
			}
		}
	}

	return nil, errors.Errorf("cannot resolve include %q from %s", ref, from)
}

// walk calls fn with the name of every {{template}} action under node.
func walk(node parse.Node, fn func(name string)) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			walk(child, fn)
		}
	case *parse.TemplateNode:
		fn(n.Name)
	case *parse.IfNode:
		walk(n.List, fn)
		walk(n.ElseList, fn)
	case *parse.RangeNode:
		walk(n.List, fn)
		walk(n.ElseList, fn)
	case *parse.WithNode:
		walk(n.List, fn)
		walk(n.ElseList, fn)
	}
}
