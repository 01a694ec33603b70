package valuator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertinimas/portal/internal/domain/shared"
)

func TestNewValuator(t *testing.T) {
	t.Run("normalizes code", func(t *testing.T) {
		v, err := NewValuator(" pv-01 ", "Petras Vertintojas")

		require.NoError(t, err)
		assert.Equal(t, "PV-01", v.Code)
		assert.True(t, v.Active)
	})

	t.Run("rejects bad codes", func(t *testing.T) {
		for _, code := range []string{"", "A", "TOO-LONG-CODE-12345", "ą1"} {
			_, err := NewValuator(code, "Name")
			assert.ErrorIs(t, err, ErrInvalidCode, code)
		}
	})

	t.Run("requires name", func(t *testing.T) {
		_, err := NewValuator("PV", "")
		assert.ErrorIs(t, err, ErrNameRequired)
	})
}

func TestValuator_CanAcceptOrders(t *testing.T) {
	v, err := NewValuator("PV", "Petras")
	require.NoError(t, err)

	assert.NoError(t, v.CanAcceptOrders())

	v.Deactivate()
	err = v.CanAcceptOrders()
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	assert.Contains(t, err.Error(), "PV")

	v.Activate()
	assert.NoError(t, v.CanAcceptOrders())
}
