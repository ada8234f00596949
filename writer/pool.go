package writer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/spatialindex/octree/bus"
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/node"
	"github.com/spatialindex/octree/pagecache"
	"github.com/spatialindex/octree/point"
	"github.com/spatialindex/octree/rawdb"
	"github.com/spatialindex/octree/sampler"
	"golang.org/x/sync/errgroup"
)

var (
	pointsWaitingGauge = metrics.NewRegisteredGauge("writer/pointswaiting", nil)
	splitMeter         = metrics.NewRegisteredMeter("writer/split", nil)
	mergeMeter         = metrics.NewRegisteredMeter("writer/merge", nil)
	taskErrorMeter     = metrics.NewRegisteredMeter("writer/taskerror", nil)
)

// Config bundles the writer pool's tunables, taken directly from
// rawdb.Settings.
type Config struct {
	NodeHierarchy  grid.Hierarchy
	PointHierarchy grid.Hierarchy
	MaxLod         grid.LodLevel
	MaxBogusInner  uint32
	MaxBogusLeaf   uint32
	NumWorkers     int
	Priority       rawdb.PriorityFunction
}

// Pool is the fixed-size worker pool that performs every mutation of the
// octree: inserting incoming points, splitting overfull nodes, and merging
// children's content back up into their parent's sample.
type Pool struct {
	cfg   Config
	cache *pagecache.Cache[grid.Cell, *node.Node]
	dir   *rawdb.Directory
	bus   *bus.Bus

	queue *queue

	nrPointsWaiting atomic.Int64

	wg     sync.WaitGroup
	cancel context.CancelFunc

	errMu   sync.Mutex
	lastErr error

	log log.Logger
}

// New starts cfg.NumWorkers worker goroutines consuming from a fresh
// priority queue. Call Close to drain and stop them.
func New(cfg Config, cache *pagecache.Cache[grid.Cell, *node.Node], dir *rawdb.Directory, b *bus.Bus) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:    cfg,
		cache:  cache,
		dir:    dir,
		bus:    b,
		queue:  newQueue(priorityFuncFor(cfg.Priority)),
		cancel: cancel,
		log:    log.New("module", "writer"),
	}
	for i := 0; i < cfg.NumWorkers; i++ {
		p.wg.Add(1)
		go p.workerLoop(ctx, i)
	}
	return p
}

// SetPriorityFunction swaps the scoring rule used to order pending tasks.
func (p *Pool) SetPriorityFunction(name rawdb.PriorityFunction) {
	p.queue.setPriorityFunc(priorityFuncFor(name))
}

// NrPointsWaiting returns the number of points enqueued for Insert tasks
// that have not yet been applied to a node. Client ingest loops should
// throttle their feed rate on this counter (spec §4.G "Backpressure").
func (p *Pool) NrPointsWaiting() int64 {
	return p.nrPointsWaiting.Load()
}

// Insert decomposes an incoming batch into per-root-cell batches and
// enqueues one Insert task per non-empty root cell.
func (p *Pool) Insert(pts point.Buffer) error {
	batches := make(map[grid.Cell]point.Buffer)
	for _, pt := range pts {
		cell, err := p.cfg.NodeHierarchy.CellAt(pt.Position, 0)
		if err != nil {
			return fmt.Errorf("writer: insert: %w", err)
		}
		batches[cell] = append(batches[cell], pt)
	}
	for cell, batch := range batches {
		p.nrPointsWaiting.Add(int64(len(batch)))
		pointsWaitingGauge.Update(p.nrPointsWaiting.Load())
		p.queue.push(&task{kind: Insert, cell: cell, points: batch, weight: len(batch)})
	}
	return nil
}

// Close drains the queue (letting any in-flight task's follow-on tasks run
// to completion) and stops all workers, then flushes the cache. It returns
// the first error observed by any task, if any, joined with a flush error.
func (p *Pool) Close(ctx context.Context) error {
	p.queue.close()
	p.wg.Wait()
	p.cancel()

	flushErr := p.cache.Flush(ctx)
	if err := p.dir.Flush(); err != nil && flushErr == nil {
		flushErr = err
	}

	p.errMu.Lock()
	taskErr := p.lastErr
	p.errMu.Unlock()

	switch {
	case taskErr != nil && flushErr != nil:
		return fmt.Errorf("writer: close: task error: %v; flush error: %w", taskErr, flushErr)
	case taskErr != nil:
		return taskErr
	default:
		return flushErr
	}
}

func (p *Pool) workerLoop(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		t, ok := p.queue.pop()
		if !ok {
			return
		}
		p.runTask(ctx, t)
	}
}

func (p *Pool) runTask(ctx context.Context, t *task) {
	defer func() {
		if r := recover(); r != nil {
			taskErrorMeter.Mark(1)
			p.log.Error("writer task panicked", "kind", t.kind, "cell", t.cell, "panic", r)
		}
	}()

	var err error
	switch t.kind {
	case Insert:
		err = p.executeInsert(ctx, t)
		p.nrPointsWaiting.Add(-int64(len(t.points)))
		pointsWaitingGauge.Update(p.nrPointsWaiting.Load())
	case Split:
		splitMeter.Mark(1)
		err = p.executeSplit(ctx, t.cell)
	case Merge:
		mergeMeter.Mark(1)
		err = p.executeMerge(ctx, t.cell)
	}
	if err != nil {
		taskErrorMeter.Mark(1)
		p.log.Error("writer task failed", "kind", t.kind, "cell", t.cell, "err", err)
		p.errMu.Lock()
		if p.lastErr == nil {
			p.lastErr = err
		}
		p.errMu.Unlock()
	}
}

// executeInsert appends the task's points to its root node and enqueues a
// Split if the node has exceeded its bogus budget (spec §4.G steps 2-3).
func (p *Pool) executeInsert(ctx context.Context, t *task) error {
	if err := p.appendAndMaybeSplit(ctx, t.cell, t.points); err != nil {
		return fmt.Errorf("insert %s: %w", t.cell, err)
	}
	return nil
}

// appendAndMaybeSplit appends pts to cell's node, creating it and
// registering it in the directory if necessary, then enqueues a Split if
// the node is now over budget.
func (p *Pool) appendAndMaybeSplit(ctx context.Context, cell grid.Cell, pts point.Buffer) error {
	p.dir.Insert(uint8(cell.Lod), cell.X, cell.Y, cell.Z)

	isLeaf := p.dir.IsLeaf(uint8(cell.Lod), cell.X, cell.Y, cell.Z)
	threshold := p.cfg.MaxBogusInner
	if isLeaf {
		threshold = p.cfg.MaxBogusLeaf
	}

	var overBudget bool
	err := p.cache.Update(ctx, cell, func(n *node.Node, exists bool) (*node.Node, error) {
		if !exists || n == nil {
			n = node.New(cell)
		}
		n.Append(pts)
		overBudget = n.BogusCount > threshold
		return n, nil
	})
	if err != nil {
		return err
	}
	if overBudget && cell.Lod < p.cfg.MaxLod {
		p.queue.push(&task{kind: Split, cell: cell, weight: 1})
	}
	return nil
}

// executeSplit implements spec §4.G step 4: the node's points are taken and
// partitioned among its eight children (each child append possibly
// triggering its own nested Split, enqueued rather than recursed into
// inline — see the open-question resolution in DESIGN.md), then a Merge
// task is enqueued to recompute the parent's sample once the children have
// settled.
//
// executeSplit itself reads no leaf status. Each appendAndMaybeSplit call
// reads IsLeaf from the directory before taking the cell's cache lock, so an
// append that read it before this split registered the children still uses
// max_bogus_leaf; later appends see the children and use max_bogus_inner
// (DESIGN.md open question 2).
func (p *Pool) executeSplit(ctx context.Context, cell grid.Cell) error {
	var taken point.Buffer
	err := p.cache.Update(ctx, cell, func(n *node.Node, exists bool) (*node.Node, error) {
		if !exists || n == nil {
			return node.New(cell), nil
		}
		taken = n.Points
		n.Points = nil
		n.BogusCount = 0
		return n, nil
	})
	if err != nil {
		return fmt.Errorf("split %s: load: %w", cell, err)
	}

	childLod := cell.Lod + 1
	batches := make(map[grid.Cell]point.Buffer)
	for _, pt := range taken {
		child, err := p.cfg.NodeHierarchy.CellAt(pt.Position, childLod)
		if err != nil {
			continue // position out of representable range at this lod; drop
		}
		batches[child] = append(batches[child], pt)
	}

	g, gctx := errgroup.WithContext(ctx)
	for child, batch := range batches {
		child, batch := child, batch
		g.Go(func() error {
			return p.appendAndMaybeSplit(gctx, child, batch)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("split %s: children: %w", cell, err)
	}

	p.queue.push(&task{kind: Merge, cell: cell, weight: 1})
	return nil
}

// executeMerge implements the parent-level resample: it reads the full
// current content of every existing child of cell, samples it down to
// cell's LOD, and replaces cell's content with the result (spec §4.G step 4
// "replaces the node's content with the parent-level sample of the union
// of children").
//
// Between executeSplit's extraction of cell's old content and this
// replace, an Insert task for the same root cell may have appended fresh
// points to it (the node was briefly empty, not locked out of appends).
// Those points were never partitioned to a child, so they aren't in
// union/sampled either; straightforwardly overwriting cell with sampled
// would silently drop them. The replace callback below captures whatever
// is sitting in cell immediately before the overwrite and the stragglers
// are re-appended afterwards, same as a freshly arrived Insert.
func (p *Pool) executeMerge(ctx context.Context, cell grid.Cell) error {
	var union point.Buffer
	changed := []grid.Cell{cell}
	for _, child := range grid.Children(cell) {
		if !p.dir.Exists(uint8(child.Lod), child.X, child.Y, child.Z) {
			continue
		}
		err := p.cache.View(ctx, child, func(n *node.Node, exists bool) error {
			if exists && n != nil {
				union = append(union, n.Points...)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("merge %s: read child %s: %w", cell, child, err)
		}
		changed = append(changed, child)
	}

	sampled := sampler.Sample(p.cfg.PointHierarchy, cell.Lod, union)

	var stragglers point.Buffer
	err := p.cache.Update(ctx, cell, func(n *node.Node, exists bool) (*node.Node, error) {
		if !exists || n == nil {
			n = node.New(cell)
		}
		stragglers = n.Points
		n.Replace(sampled)
		return n, nil
	})
	if err != nil {
		return fmt.Errorf("merge %s: replace: %w", cell, err)
	}

	if len(stragglers) > 0 {
		if err := p.appendAndMaybeSplit(ctx, cell, stragglers); err != nil {
			return fmt.Errorf("merge %s: reinsert stragglers: %w", cell, err)
		}
	}

	for _, c := range changed {
		p.bus.Publish(c)
	}
	return nil
}
