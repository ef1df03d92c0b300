package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flashes     []shared.FlashMessage
	CurrentPath string
	User        *api.User
	IsAdmin     bool
	// Refresh, when set, makes the page reload itself after that many seconds.
	Refresh int
	Data    any
}

var moscow = loadLocation("Europe/Moscow")

// Location is the salon's time zone.
func Location() *time.Location {
	return moscow
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case api.Timestamp:
		return t.Time
	case *api.Timestamp:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

var funcMap = template.FuncMap{
	"formatDate": func(v any) string {
		t := toTime(v)
		if t.IsZero() {
			return ""
		}
		return t.In(moscow).Format("02.01.2006 15:04")
	},
	"formatDay": func(day string) string {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			return day
		}
		return t.Format("02.01.2006")
	},
	"shortTime": func(clock string) string {
		if len(clock) >= 5 {
			return clock[:5]
		}
		return clock
	},
	"price":       locale.Price,
	"priceRange":  locale.PriceRange,
	"statusLabel": func(s api.BookingStatus) string { return locale.Status(string(s)) },
	"stars": func(rating int) string {
		if rating < 0 {
			rating = 0
		}
		if rating > 5 {
			rating = 5
		}
		return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
	},
	"active": func(current, path string) bool {
		if path == "/" {
			return current == "/"
		}
		return current == path || strings.HasPrefix(current, path+"/")
	},
	"seq": func(from, to int) []int {
		out := make([]int, 0, to-from+1)
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out
	},
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates(),
		"layouts/*.html",
		"partials/*.html",
		"pages/*.html",
		"exports/*.html",
		"mail/*.html",
	)
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData and status 200.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes the template into a buffer first so a failing
// template never leaves a half-written page behind.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	body, err := e.Execute(name, data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// Execute renders a template to bytes, used for documents that leave the
// process such as PDF sources and e-mails.
func (e *Engine) Execute(name string, data any) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
