package searcher

import (
	"sync/atomic"
	"time"
)

// SearchMetric summarizes one best-action search.
type SearchMetric struct {
	Workers      int
	Duration     time.Duration
	Iterations   int64
	Expansions   int64
	FullRollouts int64
	TreeSize     int
}

// Collector gathers search metrics; the dummy variant makes collection
// free when nobody is looking.
type Collector interface {
	Start(workers int)
	AddIteration()
	AddExpansion()
	AddFullRollout()
	SetTreeSize(size int)
	Complete() SearchMetric
}

type collector struct {
	workers      int
	startTime    time.Time
	iterations   atomic.Int64
	expansions   atomic.Int64
	fullRollouts atomic.Int64
	treeSize     atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start(workers int) {
	c.workers = workers
	c.startTime = time.Now()
	c.iterations.Store(0)
	c.expansions.Store(0)
	c.fullRollouts.Store(0)
	c.treeSize.Store(0)
}

func (c *collector) AddIteration()        { c.iterations.Add(1) }
func (c *collector) AddExpansion()        { c.expansions.Add(1) }
func (c *collector) AddFullRollout()      { c.fullRollouts.Add(1) }
func (c *collector) SetTreeSize(size int) { c.treeSize.Store(int64(size)) }

func (c *collector) Complete() SearchMetric {
	return SearchMetric{
		Workers:      c.workers,
		Duration:     time.Since(c.startTime),
		Iterations:   c.iterations.Load(),
		Expansions:   c.expansions.Load(),
		FullRollouts: c.fullRollouts.Load(),
		TreeSize:     int(c.treeSize.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (dummyCollector) Start(workers int)      {}
func (dummyCollector) AddIteration()          {}
func (dummyCollector) AddExpansion()          {}
func (dummyCollector) AddFullRollout()        {}
func (dummyCollector) SetTreeSize(size int)   {}
func (dummyCollector) Complete() SearchMetric { return SearchMetric{} }
