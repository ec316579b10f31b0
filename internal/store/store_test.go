package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "folio/internal/errors"
	"folio/internal/models"
)

func seed() *models.Snapshot {
	return &models.Snapshot{
		Positions: []models.Position{
			{ID: "p1", Symbol: "ETH", Type: models.AssetCrypto, Amount: 4},
		},
		Prices: map[string]float64{"ETH": 3200},
	}
}

func TestMemoryStore_ReadReturnsIsolatedCopy(t *testing.T) {
	st := NewMemoryStore(seed())

	snap := st.Read()
	snap.Positions[0].Amount = 999
	snap.Prices["ETH"] = 1

	fresh := st.Read()
	assert.InDelta(t, 4.0, fresh.Positions[0].Amount, 1e-9)
	assert.InDelta(t, 3200.0, fresh.Prices["ETH"], 1e-9)
}

func TestMemoryStore_MutateCommitsAtomically(t *testing.T) {
	st := NewMemoryStore(seed())

	result, err := st.Mutate(func(data *models.Snapshot) (interface{}, error) {
		data.Positions[0].Amount = 2
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.InDelta(t, 2.0, st.Read().Positions[0].Amount, 1e-9)
}

func TestMemoryStore_MutateErrorDiscardsChanges(t *testing.T) {
	st := NewMemoryStore(seed())

	_, err := st.Mutate(func(data *models.Snapshot) (interface{}, error) {
		data.Positions = nil
		return nil, assert.AnError
	})
	require.Error(t, err)
	assert.Len(t, st.Read().Positions, 1)
}

func TestMemoryStore_ClosedStoreRejectsMutations(t *testing.T) {
	st := NewMemoryStore(seed())
	require.NoError(t, st.Close())

	_, err := st.Mutate(func(data *models.Snapshot) (interface{}, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, apperrors.ErrStoreClosed)
}
