package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/model"
)

func items(descs ...string) []model.Item {
	out := make([]model.Item, 0, len(descs))
	for _, d := range descs {
		out = append(out, model.New(d))
	}
	return out
}

func descriptions(in []model.Item) []string {
	out := make([]string, 0, len(in))
	for _, it := range in {
		out = append(out, it.Description)
	}
	return out
}

func TestStore_New_Empty(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Snapshot())
	assert.Empty(t, s.Snapshot())
}

func TestStore_Insert_Front(t *testing.T) {
	s := New()
	s.ReplaceAll(items("A", "B"))

	require.NoError(t, s.Insert(0, model.New("C")))
	assert.Equal(t, []string{"C", "A", "B"}, descriptions(s.Snapshot()))
}

func TestStore_Insert_Positions(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{"front", 0, []string{"X", "A", "B"}},
		{"middle", 1, []string{"A", "X", "B"}},
		{"end", 2, []string{"A", "B", "X"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.ReplaceAll(items("A", "B"))
			require.NoError(t, s.Insert(tt.index, model.New("X")))
			assert.Equal(t, tt.want, descriptions(s.Snapshot()))
		})
	}
}

func TestStore_Insert_AllowsDuplicates(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(0, model.New("same")))
	require.NoError(t, s.Insert(0, model.New("same")))
	assert.Equal(t, 2, s.Len())
}

func TestStore_Insert_OutOfRange(t *testing.T) {
	s := New()
	s.ReplaceAll(items("A"))

	for _, idx := range []int{-1, 2} {
		err := s.Insert(idx, model.New("X"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	}
	assert.Equal(t, []string{"A"}, descriptions(s.Snapshot()))
}

func TestStore_Remove_ByIndex(t *testing.T) {
	s := New()
	s.ReplaceAll(items("A", "B", "C"))

	got, err := s.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Description)
	assert.Equal(t, []string{"A", "C"}, descriptions(s.Snapshot()))
}

func TestStore_Remove_OutOfRange(t *testing.T) {
	s := New()
	s.ReplaceAll(items("A", "B"))

	_, err := s.Remove(5)
	require.Error(t, err)

	var ie *IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "remove", ie.Op)
	assert.Equal(t, 5, ie.Index)
	assert.Equal(t, 2, ie.Len)
	assert.Equal(t, []string{"A", "B"}, descriptions(s.Snapshot()))
}

func TestStore_Toggle_TwiceRestores(t *testing.T) {
	s := New()
	s.ReplaceAll(items("A", "B", "C"))
	before := s.Snapshot()

	it, err := s.Toggle(1)
	require.NoError(t, err)
	assert.True(t, it.Completed)

	it, err = s.Toggle(1)
	require.NoError(t, err)
	assert.False(t, it.Completed)

	assert.Equal(t, before, s.Snapshot())
}

func TestStore_Toggle_OutOfRange(t *testing.T) {
	s := New()
	_, err := s.Toggle(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestStore_Snapshot_IsCopy(t *testing.T) {
	s := New()
	s.ReplaceAll(items("A"))

	snap := s.Snapshot()
	snap[0].Description = "changed"
	assert.Equal(t, "A", s.Snapshot()[0].Description)
}

func TestStore_ReplaceAll_CopiesInput(t *testing.T) {
	in := items("A", "B")
	s := New()
	s.ReplaceAll(items("old"))
	s.ReplaceAll(in)
	in[0].Completed = true

	assert.Equal(t, []string{"A", "B"}, descriptions(s.Snapshot()))
	assert.False(t, s.Snapshot()[0].Completed)
}

func TestStore_Subscribe(t *testing.T) {
	s := New()
	var seen [][]model.Item
	cancel := s.Subscribe(func(snap []model.Item) { seen = append(seen, snap) })

	require.NoError(t, s.Insert(0, model.New("A")))
	_, err := s.Toggle(0)
	require.NoError(t, err)
	_, err = s.Remove(3)
	require.Error(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, []model.Item{{Completed: true, Description: "A"}}, seen[1])

	cancel()
	_, err = s.Remove(0)
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}
