package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitBoardSetGet(t *testing.T) {
	b := NewBitBoard(20, 10)

	require.False(t, b.Get(3, 4), "fresh board should be empty")

	b.Set(3, 4, true)
	require.True(t, b.Get(3, 4), "set bit should read back")

	b.Set(3, 4, false)
	require.False(t, b.Get(3, 4), "cleared bit should read back empty")
}

func TestBitBoardIgnoresOutOfRange(t *testing.T) {
	b := NewBitBoard(8, 8)

	b.Set(-1, 0, true)
	b.Set(0, -1, true)
	b.Set(8, 0, true)
	b.Set(0, 8, true)

	require.Equal(t, 0, b.PopCount(), "out-of-range writes should be ignored")
	require.False(t, b.Get(-1, 0), "out-of-range reads should be false")
	require.False(t, b.Get(8, 8), "out-of-range reads should be false")
}

func TestBitBoardPopCount(t *testing.T) {
	b := NewBitBoard(64, 64)
	for i := 0; i < 64; i++ {
		b.Set(i, i, true)
	}
	require.Equal(t, 64, b.PopCount())

	b.Clear()
	require.Equal(t, 0, b.PopCount(), "clear should reset every bit")
}

func TestBitBoardCombinators(t *testing.T) {
	a := NewBitBoard(10, 10)
	b := NewBitBoard(10, 10)
	a.Set(1, 1, true)
	a.Set(2, 2, true)
	b.Set(2, 2, true)
	b.Set(3, 3, true)

	and := a.And(b)
	require.Equal(t, 1, and.PopCount())
	require.True(t, and.Get(2, 2))

	or := a.Or(b)
	require.Equal(t, 3, or.PopCount())
	require.True(t, or.Get(1, 1))
	require.True(t, or.Get(3, 3))
}

func TestBitBoardCloneIsIndependent(t *testing.T) {
	a := NewBitBoard(5, 5)
	a.Set(0, 0, true)

	clone := a.Clone()
	clone.Set(4, 4, true)

	require.True(t, clone.Get(0, 0))
	require.False(t, a.Get(4, 4), "mutating the clone should not touch the original")
}
