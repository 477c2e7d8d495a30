package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "impactledger/pkg/domain-errors"
)

// TestParseDelegateID_Invariants validates the parsing invariant:
// "sequence IDs are positive decimal integers"
func TestParseDelegateID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseDelegateID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero", func(t *testing.T) {
		_, err := ParseDelegateID("0")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects signs and whitespace", func(t *testing.T) {
		for _, input := range []string{"-1", "+1", " 1", "1 ", "1e3", "0x10"} {
			_, err := ParseDelegateID(input)
			require.Error(t, err, input)
		}
	})

	t.Run("rejects overflow", func(t *testing.T) {
		_, err := ParseDelegateID("18446744073709551616")
		require.Error(t, err)
	})

	t.Run("accepts max uint64", func(t *testing.T) {
		id, err := ParseDelegateID("18446744073709551615")
		require.NoError(t, err)
		assert.Equal(t, DelegateID(^uint64(0)), id)
	})

	t.Run("accepts valid ID", func(t *testing.T) {
		id, err := ParseDelegateID("9999")
		require.NoError(t, err)
		assert.Equal(t, DelegateID(9999), id)
		assert.Equal(t, "9999", id.String())
	})
}

// TestTypeDistinction documents that delegate and credential IDs are distinct types
// even though both are sequential integers.
func TestTypeDistinction(t *testing.T) {
	delegateID := DelegateID(1)
	credentialID := CredentialID(1)

	// These would fail to compile if types were interchangeable:
	// var _ DelegateID = credentialID
	// var _ CredentialID = delegateID

	assert.Equal(t, uint64(delegateID), uint64(credentialID))
	assert.False(t, delegateID.IsZero())
	assert.True(t, CredentialID(0).IsZero())
}

func TestParseAccountID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Empty string", "", true},
		{"Whitespace only", "   ", true},
		{"Leading whitespace", " ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM", true},
		{"Null byte injection", "ST1PQ\x00HQ", true},
		{"Unicode zero-width space", "ST1PQ\u200BHQ", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Stacks principal", "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM", false},
		{"Contract principal", "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.delegate-tracking", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAccountID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

// TestAllSequenceIDs_ConsistentBehavior ensures both sequence types parse identically.
func TestAllSequenceIDs_ConsistentBehavior(t *testing.T) {
	for _, input := range []string{"", "invalid", "0", "42", "007"} {
		t.Run("input: "+input, func(t *testing.T) {
			d, errDelegate := ParseDelegateID(input)
			c, errCredential := ParseCredentialID(input)
			assert.Equal(t, errDelegate == nil, errCredential == nil)
			assert.Equal(t, uint64(d), uint64(c))
		})
	}
}
