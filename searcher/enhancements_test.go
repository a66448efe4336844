package searcher

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"zooscape/game"
)

func TestBanditUnvisitedChildrenRankFirst(t *testing.T) {
	gs := walledState(9, 9, game.Position{X: 4, Y: 4})
	gs.SetCell(6, 6, game.Pellet)
	parent := NewNode(gs, nil, game.Up, "me")
	child := parent.Expand(testRNG())
	parent.Update(50)

	for _, kind := range []BanditKind{EnhancedUCB1, UCBV, UCB1Tuned} {
		bandit := NewBandit(kind, DefaultExploration)
		require.True(t, math.IsInf(bandit.Score(child, parent), 1),
			"%s should rank unvisited children first", kind)
	}
}

func TestBanditPrefersBetterMeansEventually(t *testing.T) {
	gs := walledState(9, 9, game.Position{X: 4, Y: 4})
	gs.SetCell(6, 6, game.Pellet)
	parent := NewNode(gs, nil, game.Up, "me")
	rng := testRNG()
	good := parent.Expand(rng)
	bad := parent.Expand(rng)

	for i := 0; i < 100; i++ {
		parent.Update(50)
		parent.Update(50)
		good.Update(80)
		bad.Update(20)
	}

	for _, kind := range []BanditKind{EnhancedUCB1, UCBV, UCB1Tuned} {
		bandit := NewBandit(kind, DefaultExploration)
		require.Greater(t, bandit.Score(good, parent), bandit.Score(bad, parent),
			"%s should separate clearly better children", kind)
	}
}

func TestAMAFBlending(t *testing.T) {
	amaf := NewAMAF(0.5)
	amaf.Update(game.Left, 80)
	amaf.Update(game.Left, 80)

	require.InDelta(t, 80.0, amaf.Value(game.Left), 1e-9)
	require.Equal(t, 0.0, amaf.Value(game.Right))

	// With zero node visits the blend is pure AMAF.
	require.InDelta(t, 80.0, amaf.Combined(0, game.Left, 0), 1e-9)

	// With many visits the node weight approaches 1/(1+beta), two thirds here:
	// w = 1000/1500.5, so the blend is 80 - 40w.
	blended := amaf.Combined(40, game.Left, 1000)
	require.InDelta(t, 53.34, blended, 0.01)

	amaf.Reset()
	require.Equal(t, 0.0, amaf.Value(game.Left))
}

func TestVirtualLossLifecycle(t *testing.T) {
	gs := walledState(7, 7, game.Position{X: 3, Y: 3})
	gs.SetCell(5, 5, game.Pellet)
	node := NewNode(gs, nil, game.Up, "me")

	vloss := NewVirtualLoss(5.0)
	require.Equal(t, 0.0, vloss.Score(node))

	vloss.Add(node)
	vloss.Add(node)
	require.Equal(t, 2, vloss.Count(node))
	require.Equal(t, 10.0, vloss.Score(node))

	vloss.Remove(node)
	require.Equal(t, 1, vloss.Count(node))

	// Removing from a clean node is a no-op.
	vloss.Remove(node)
	vloss.Remove(node)
	require.Equal(t, 0, vloss.Count(node))
}

func TestTranspositionTable(t *testing.T) {
	gs := walledState(7, 7, game.Position{X: 3, Y: 3})
	gs.SetCell(5, 5, game.Pellet)
	node := NewNode(gs, nil, game.Up, "me")
	hash := gs.Hash()

	table := NewTranspositionTable(100, time.Minute)
	require.Nil(t, table.Lookup(hash), "empty table misses")

	table.Store(hash, node)
	require.Equal(t, node, table.Lookup(hash))
	require.Equal(t, 1, table.Len())

	table.Reset()
	require.Nil(t, table.Lookup(hash))
}

func TestTranspositionTableExpiry(t *testing.T) {
	gs := walledState(7, 7, game.Position{X: 3, Y: 3})
	gs.SetCell(5, 5, game.Pellet)
	node := NewNode(gs, nil, game.Up, "me")
	hash := gs.Hash()

	table := NewTranspositionTable(100, time.Nanosecond)
	table.Store(hash, node)
	time.Sleep(time.Millisecond)

	require.Nil(t, table.Lookup(hash), "expired entries read as missing")
	require.Equal(t, 0, table.Len(), "expired entries are dropped on lookup")
}

func TestTranspositionTableEviction(t *testing.T) {
	table := NewTranspositionTable(10, time.Minute)
	gs := walledState(7, 7, game.Position{X: 3, Y: 3})
	gs.SetCell(5, 5, game.Pellet)
	node := NewNode(gs, nil, game.Up, "me")

	for i := 0; i < 50; i++ {
		table.Store(game.StateHash(i), node)
	}
	require.LessOrEqual(t, table.Len(), 10, "the table never outgrows its bound")
}

func TestAdoptStatsMergesCounts(t *testing.T) {
	gs := walledState(7, 7, game.Position{X: 3, Y: 3})
	gs.SetCell(5, 5, game.Pellet)
	a := NewNode(gs.Clone(), nil, game.Up, "me")
	b := NewNode(gs.Clone(), nil, game.Up, "me")

	a.Update(60)
	a.Update(40)
	b.adoptStats(a)

	require.Equal(t, int64(2), b.Visits())
	require.InDelta(t, 50.0, b.AverageReward(), 1e-9)
}
