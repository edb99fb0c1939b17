package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOrdered_PreservesOrder(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}

	got, err := MapOrdered(context.Background(), items, 8, func(_ context.Context, i, v int) (int, error) {
		return v * v, nil
	})
	require.NoError(t, err)
	require.Len(t, got, len(items))
	for i, v := range got {
		assert.Equal(t, i*i, v)
	}
}

func TestMapOrdered_Empty(t *testing.T) {
	got, err := MapOrdered(context.Background(), []string(nil), 0, func(context.Context, int, string) (int, error) {
		t.Fatal("fn should not be called")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMapOrdered_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := MapOrdered(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, _ int, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestMapOrdered_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MapOrdered(ctx, []int{1, 2, 3}, 2, func(_ context.Context, _ int, v int) (int, error) {
		return v, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
