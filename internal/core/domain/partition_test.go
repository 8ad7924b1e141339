package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUSStates tests the default partition set
func TestUSStates(t *testing.T) {
	states := USStates()

	assert.Equal(t, 50, states.Len())
	all := states.All()
	assert.Equal(t, "AL", all[0].Code)
	assert.Equal(t, "WY", all[len(all)-1].Code)

	ca, ok := states.Lookup("ca")
	require.True(t, ok)
	assert.Equal(t, "US-CA", ca.ISO3166())
	assert.Equal(t, "CA", ca.String())

	_, ok = states.Lookup("DC")
	assert.False(t, ok)
}

// TestPartitionSet_AllIsCopy tests that callers cannot mutate the set
func TestPartitionSet_AllIsCopy(t *testing.T) {
	states := USStates()
	all := states.All()
	all[0].Code = "XX"

	assert.Equal(t, "AL", states.All()[0].Code)
}

// TestPartitionSet_Resolve tests code resolution
func TestPartitionSet_Resolve(t *testing.T) {
	states := USStates()

	t.Run("empty means all", func(t *testing.T) {
		got, err := states.Resolve(nil)
		require.NoError(t, err)
		assert.Len(t, got, 50)
	})

	t.Run("order preserved and duplicates dropped", func(t *testing.T) {
		got, err := states.Resolve([]string{"tx", "CA", " ca "})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "TX", got[0].Code)
		assert.Equal(t, "CA", got[1].Code)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := states.Resolve([]string{"CA", "ZZ"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfig))

		var ce *ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "ZZ", ce.Value)
	})
}

// TestNewPartitionSet_Dedupes tests duplicate codes keep the first entry
func TestNewPartitionSet_Dedupes(t *testing.T) {
	s := NewPartitionSet(
		Partition{Code: "on", Country: "CA"},
		Partition{Code: "ON", Country: "US"},
	)
	assert.Equal(t, 1, s.Len())
	p, ok := s.Lookup("ON")
	require.True(t, ok)
	assert.Equal(t, "CA", p.Country)
}
