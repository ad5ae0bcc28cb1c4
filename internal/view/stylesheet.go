package view

// StylesheetCompiler turns a companion stylesheet into CSS. A view
// "users/list.html" has the companion "users/list" + Extension().
type StylesheetCompiler interface {
	Extension() string
	Compile(name string, src []byte) (string, error)
}

// PlainCSS passes .css files through unchanged.
type PlainCSS struct{}

func (PlainCSS) Extension() string { return ".css" }

func (PlainCSS) Compile(_ string, src []byte) (string, error) {
	return string(src), nil
}
