package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPredictionHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.SavePrediction(ctx, PredictionRecord{
			RequestID:         "req-" + string(rune('a'+i)),
			HbA1cLevel:        5.5 + float64(i),
			BloodGlucoseLevel: 120 + i*50,
			Age:               40,
			ModelLabel:        i % 2,
			GuidelineCategory: "Low",
			Agree:             i == 0,
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := store.RecentPredictions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "req-c", records[0].RequestID)
	assert.Equal(t, 7.5, records[0].HbA1cLevel)
	assert.Equal(t, 220, records[0].BloodGlucoseLevel)
	assert.Equal(t, "req-b", records[1].RequestID)
	assert.False(t, records[1].Agree)
	assert.True(t, records[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	all, err := store.RecentPredictions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.True(t, all[2].Agree)
}

func TestTrainingLog(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTrainingLog(ctx, TrainingLog{
		ModelName:  "decision_tree",
		ModelPath:  "models/diabetes_tree.json",
		Accuracy:   0.97,
		Precision:  0.99,
		Recall:     0.68,
		F1:         0.81,
		MaxDepth:   5,
		DataPoints: 80000,
	}))

	logs, err := store.LoadTrainingLog(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "decision_tree", logs[0].ModelName)
	assert.Equal(t, 80000, logs[0].DataPoints)
	assert.False(t, logs[0].TrainedAt.IsZero())
}

func TestNilStore(t *testing.T) {
	var store *Store
	ctx := context.Background()
	assert.ErrorIs(t, store.Ping(ctx), ErrClosed)
	assert.ErrorIs(t, store.SavePrediction(ctx, PredictionRecord{}), ErrClosed)
	_, err := store.RecentPredictions(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, store.Close())

	_, err = Open("")
	assert.Error(t, err)
}
