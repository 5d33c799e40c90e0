package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	Welcome      = "welcome"
	NewRecipe    = "new_recipe"
	ShoppingList = "shopping_list"
)

// Item is one shopping list line.
type Item struct {
	Name            string `json:"Name"`
	Amount          int    `json:"Amount"`
	MeasurementUnit string `json:"MeasurementUnit"`
}

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name    string `json:"Name"`
	Email   string `json:"Email"`
	AppName string `json:"AppName"`
	SiteURL string `json:"SiteURL"`

	AuthorName string `json:"AuthorName,omitempty"`
	RecipeName string `json:"RecipeName,omitempty"`
	RecipeURL  string `json:"RecipeURL,omitempty"`

	Items []Item `json:"Items,omitempty"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback, value any) any {
	switch x := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	}
	if reflect.ValueOf(value).IsZero() {
		return fallback
	}
	return value
}

// ErrUnknownTemplate is returned by Render for names without embedded files.
var ErrUnknownTemplate = errors.New("unknown email template")

var (
	parseOnce sync.Once
	textSet   *texttpl.Template
	htmlSet   *htmpl.Template
	parseErr  error
)

// parse loads every embedded template once. Subjects and plain bodies go
// through text/template, html bodies through html/template.
func parse() error {
	parseOnce.Do(func() {
		funcs := map[string]any{"default": defaultFn}
		textSet, parseErr = texttpl.New("text").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
		if parseErr != nil {
			return
		}
		htmlSet, parseErr = htmpl.New("html").Funcs(funcs).ParseFS(FS, "*.html.tmpl")
	})
	return parseErr
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func execute(t executor, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render produces subject, text and html for name from
// <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject, text, html string, err error) {
	if err := parse(); err != nil {
		return "", "", "", fmt.Errorf("parse templates: %w", err)
	}
	st, tt, ht := textSet.Lookup(name+".subject.tmpl"), textSet.Lookup(name+".text.tmpl"), htmlSet.Lookup(name+".html.tmpl")
	if st == nil || tt == nil || ht == nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	if subject, err = execute(st, data); err != nil {
		return "", "", "", fmt.Errorf("exec %s subject: %w", name, err)
	}
	if text, err = execute(tt, data); err != nil {
		return "", "", "", fmt.Errorf("exec %s text: %w", name, err)
	}
	if html, err = execute(ht, data); err != nil {
		return "", "", "", fmt.Errorf("exec %s html: %w", name, err)
	}
	return strings.TrimSpace(subject), text, html, nil
}
