package view

import (
	"html/template"
	"sync"
)

// Cache holds compiled templates and rendered stylesheets of one Engine.
// The first stored value for a key wins; concurrent misses may compile
// twice, which only costs time.
type Cache struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
	styles    map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		templates: make(map[string]*template.Template),
		styles:    make(map[string]string),
	}
}

func (c *Cache) Template(key string) (*template.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[key]
	return t, ok
}

// StoreTemplate stores t under key unless the key is taken, and returns
// the cached value.
func (c *Cache) StoreTemplate(key string, t *template.Template) *template.Template {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.templates[key]; ok {
		return existing
	}
	c.templates[key] = t
	return t
}

func (c *Cache) Stylesheet(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	css, ok := c.styles[key]
	return css, ok
}

// StoreStylesheet stores css under key unless the key is taken, and
// returns the cached value.
func (c *Cache) StoreStylesheet(key, css string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.styles[key]; ok {
		return existing
	}
	c.styles[key] = css
	return css
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.templates)
	clear(c.styles)
}

// Len returns the number of cached templates and stylesheets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates) + len(c.styles)
}
