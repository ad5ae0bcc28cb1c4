package pipeline

import "net/http"

// Kind tags an Outcome.
type Kind int

const (
	KindContinue Kind = iota
	KindRedirect
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindContinue:
		return "continue"
	case KindRedirect:
		return "redirect"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// Outcome is the result of an error stage.
type Outcome struct {
	kind   Kind
	status int
	url    string
	view   string
	data   map[string]any
}

// Continue passes the error to the next stage.
func Continue() Outcome {
	return Outcome{kind: KindContinue}
}

// Redirect answers with a 302 to url.
func Redirect(url string) Outcome {
	return Outcome{kind: KindRedirect, status: http.StatusFound, url: url}
}

// Render answers by rendering view with data under status.
func Render(status int, view string, data map[string]any) Outcome {
	return Outcome{kind: KindRender, status: status, view: view, data: data}
}

func (o Outcome) Kind() Kind           { return o.kind }
func (o Outcome) Status() int          { return o.status }
func (o Outcome) URL() string          { return o.url }
func (o Outcome) View() string         { return o.view }
func (o Outcome) Data() map[string]any { return o.data }
