package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vertinimas/portal/internal/domain/shared"
)

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "Gedimino pr. 1, Vilnius", NormalizeAddress("  Gedimino   pr. 1,\tVilnius \n"))
	assert.Equal(t, "", NormalizeAddress("   "))
}

func TestErrorCategories(t *testing.T) {
	assert.ErrorIs(t, ErrAddressRequired, shared.ErrInvalidInput)
	assert.ErrorIs(t, ErrNoMatch, shared.ErrNotFound)
	assert.ErrorIs(t, ErrUnavailable, shared.ErrInternal)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(ErrNoMatch))
	assert.Equal(t, "disabled", Outcome(ErrDisabled))
	assert.Equal(t, "error", Outcome(ErrUnavailable))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
