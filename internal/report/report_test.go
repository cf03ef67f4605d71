package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
)

func TestParseMonth(t *testing.T) {
	now := time.Date(2024, 7, 19, 15, 4, 0, 0, time.UTC)

	m, err := ParseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), m)

	m, err = ParseMonth("2023-02", now)
	require.NoError(t, err)
	assert.Equal(t, time.February, m.Month())

	_, err = ParseMonth("2023/02", now)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
