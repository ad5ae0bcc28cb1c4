package view

import (
	"html/template"
	"strings"
	"time"
	// Zone data for formatTime on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Funcs returns the functions available to every template: the sprig
// library plus toYaml, title, formatTime and safeHTML.
func Funcs() template.FuncMap {
	funcs := sprig.HtmlFuncMap()

	funcs["toYaml"] = toYAML
	funcs["title"] = title
	funcs["formatTime"] = formatTime
	funcs["safeHTML"] = safeHTML

	return funcs
}

func toYAML(v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "toYaml")
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}

// formatTime formats t with a Go layout in the named IANA zone. An empty
// zone formats in UTC.
func formatTime(t time.Time, layout, zone string) (string, error) {
	loc := time.UTC
	if zone != "" {
		var err error
		if loc, err = time.LoadLocation(zone); err != nil {
			return "", errors.Wrapf(err, "formatTime: unknown zone %q", zone)
		}
	}
	return t.In(loc).Format(layout), nil
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}
