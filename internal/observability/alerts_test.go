package observability

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type alertFile struct {
	Groups []struct {
		Name  string `yaml:"name"`
		Rules []struct {
			Alert       string            `yaml:"alert"`
			Expr        string            `yaml:"expr"`
			For         string            `yaml:"for"`
			Labels      map[string]string `yaml:"labels"`
			Annotations map[string]string `yaml:"annotations"`
		} `yaml:"rules"`
	} `yaml:"groups"`
}

var metricName = regexp.MustCompile(`sakura_[a-z_]+`)

func loadAlerts(t *testing.T) alertFile {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "deploy", "prometheus", "alerts", "sakura.yml"))
	require.NoError(t, err)
	var file alertFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	require.Len(t, file.Groups, 1)
	return file
}

// scrapeAll returns the exposition text after every series has a sample.
func scrapeAll(t *testing.T) string {
	t.Helper()
	m := NewMetrics()
	m.ObserveAPICall("auth", http.MethodGet, http.StatusOK, 40*time.Millisecond)
	m.AuthAttempt("login", "success")
	m.SessionExpired()
	rec := httptest.NewRecorder()
	m.Middleware(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestAlertRulesAreComplete(t *testing.T) {
	severities := map[string]string{
		"SalonAPIUnavailable": "critical",
		"SalonAPISlow":        "warning",
		"SessionExpirySpike":  "warning",
	}
	rules := loadAlerts(t).Groups[0].Rules
	require.Len(t, rules, len(severities))
	for _, rule := range rules {
		assert.Equal(t, severities[rule.Alert], rule.Labels["severity"], rule.Alert)
		assert.NotEmpty(t, rule.For, rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], rule.Alert)
	}
}

func TestAlertRulesQueryExportedSeries(t *testing.T) {
	exposition := scrapeAll(t)
	for _, rule := range loadAlerts(t).Groups[0].Rules {
		names := metricName.FindAllString(rule.Expr, -1)
		require.NotEmpty(t, names, rule.Alert)
		for _, name := range names {
			assert.Contains(t, exposition, name, "%s queries %s", rule.Alert, name)
		}
	}
}
