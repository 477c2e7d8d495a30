package models

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "impactledger/pkg/domain-errors"
)

var now = time.Date(2025, 12, 3, 10, 0, 0, 0, time.UTC)

func TestNewDelegate(t *testing.T) {
	t.Run("trims and starts at zero impact", func(t *testing.T) {
		d, err := NewDelegate("  Impact Research Expert ", "Climate Change Mitigation", "deployer", now)
		require.NoError(t, err)
		assert.Equal(t, "Impact Research Expert", d.Name)
		assert.Zero(t, d.TotalImpact)
		assert.True(t, d.ID.IsZero(), "ID is assigned by the store")
	})

	t.Run("rejects empty or blank fields", func(t *testing.T) {
		for _, tc := range []struct{ name, spec string }{
			{"", "Climate"},
			{"Expert", ""},
			{"   ", "Climate"},
		} {
			_, err := NewDelegate(tc.name, tc.spec, "deployer", now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		}
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		_, err := NewDelegate(strings.Repeat("é", MaxNameLength), "Climate", "deployer", now)
		require.NoError(t, err)
		_, err = NewDelegate(strings.Repeat("é", MaxNameLength+1), "Climate", "deployer", now)
		require.Error(t, err)
	})
}

func TestNewCredential(t *testing.T) {
	t.Run("accepts zero score", func(t *testing.T) {
		c, err := NewCredential(1, "Climate Impact Assessment", "Verified expertise", 0, "deployer", now)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), c.ImpactScore)
	})

	t.Run("rejects blank title", func(t *testing.T) {
		_, err := NewCredential(1, " ", "d", 1, "deployer", now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects long description", func(t *testing.T) {
		_, err := NewCredential(1, "t", strings.Repeat("x", MaxDescriptionLength+1), 1, "deployer", now)
		require.Error(t, err)
	})
}

func TestDelegateImpact(t *testing.T) {
	d := &Delegate{ID: 1}
	require.NoError(t, d.CanAddImpact(75))
	d.ApplyImpact(75)
	require.NoError(t, d.CanAddImpact(100))
	d.ApplyImpact(100)
	assert.Equal(t, uint64(175), d.TotalImpact)

	err := d.CanAddImpact(math.MaxUint64)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Equal(t, uint64(175), d.TotalImpact, "failed check must not mutate")
}
