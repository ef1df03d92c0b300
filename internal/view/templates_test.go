package view

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestFormatHelpers(t *testing.T) {
	formatDate := funcMap["formatDate"].(func(any) string)
	utc := time.Date(2025, 3, 8, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "08.03.2025 12:30", formatDate(utc))
	assert.Equal(t, "08.03.2025 12:30", formatDate(api.Timestamp{Time: utc}))
	assert.Equal(t, "", formatDate(api.Timestamp{}))
	assert.Equal(t, "", formatDate((*api.Timestamp)(nil)))

	formatDay := funcMap["formatDay"].(func(string) string)
	assert.Equal(t, "14.05.2099", formatDay("2099-05-14"))
	assert.Equal(t, "завтра", formatDay("завтра"))

	shortTime := funcMap["shortTime"].(func(string) string)
	assert.Equal(t, "12:00", shortTime("12:00:00"))
	assert.Equal(t, "9", shortTime("9"))
}

func TestPriceHelpers(t *testing.T) {
	priceRange := funcMap["priceRange"].(func(int, int) string)
	assert.Equal(t, locale.Price(1200), priceRange(1200, 0))
	assert.Equal(t, locale.PriceRange(1500, 2500), priceRange(1500, 2500))
}

type priceLine struct {
	Name     string
	From, To int
	Duration string
}

type priceGroup struct {
	Name  string
	Items []priceLine
}

func TestPriceListRendersRanges(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	data := TemplateData{Title: "Цены", Data: []priceGroup{{
		Name:  "Маникюр",
		Items: []priceLine{{Name: "Покрытие гель-лаком", From: 1500, To: 2500, Duration: "90 минут"}},
	}}}
	html, err := engine.Execute("pages/price.html", data)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Покрытие гель-лаком")
	assert.Contains(t, string(html), locale.PriceRange(1500, 2500))
}

func TestStarsClampRating(t *testing.T) {
	stars := funcMap["stars"].(func(int) string)
	assert.Equal(t, "★★★☆☆", stars(3))
	assert.Equal(t, "★★★★★", stars(9))
	assert.Equal(t, "☆☆☆☆☆", stars(-1))
}

func TestActiveMatchesSection(t *testing.T) {
	active := funcMap["active"].(func(string, string) bool)
	assert.True(t, active("/", "/"))
	assert.False(t, active("/services", "/"))
	assert.True(t, active("/cabinet", "/cabinet"))
	assert.True(t, active("/admin/jobs", "/admin"))
	assert.False(t, active("/administrator", "/admin"))
}

func TestRenderStatusWritesPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	data := TemplateData{
		Title:   "Не найдено",
		Data:    "Проверьте адрес",
		Flashes: []shared.FlashMessage{{Kind: shared.FlashError, Message: "Страница удалена"}},
	}
	require.NoError(t, engine.RenderStatus(rec, http.StatusNotFound, "pages/error.html", data))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Страница удалена")
}

func TestExecuteUnknownTemplateFails(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	_, err = engine.Execute("pages/missing.html", nil)
	assert.Error(t, err)

	var nilEngine *Engine
	_, err = nilEngine.Execute("pages/error.html", nil)
	assert.Error(t, err)
}

func TestLocationIsMoscow(t *testing.T) {
	_, offset := time.Date(2025, 7, 1, 0, 0, 0, 0, Location()).Zone()
	assert.Equal(t, 3*60*60, offset)
}
