package locale

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslatesKnownKeys(t *testing.T) {
	assert.Equal(t, "Ошибка входа", T(LoginFailed))
	assert.Equal(t, "Ошибка сети", T(NetworkError))
	assert.Equal(t, "Статус изменён на: confirmed", T(BookingUpdated, "confirmed"))
}

func TestEveryKeyHasTranslation(t *testing.T) {
	for key, text := range russian {
		assert.NotEmpty(t, text, key)
		assert.NotEqual(t, key, T(key, "x"), key)
	}
}

func TestPriceUsesRubleSign(t *testing.T) {
	got := Price(1500)
	assert.True(t, strings.HasSuffix(got, "₽"), got)
	assert.Contains(t, got, "500")
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Подтверждена", Status("confirmed"))
	assert.Equal(t, "archived", Status("archived"))
}

func TestPriceRange(t *testing.T) {
	assert.Equal(t, Price(1200), PriceRange(1200, 0))
	got := PriceRange(1500, 2500)
	assert.Contains(t, got, "–")
	assert.True(t, strings.HasSuffix(got, "₽"), got)
}
