package libknot

import (
	"context"
	"math/rand"
	"sync"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/chain"
	"github.com/2x3systems/goknot/libknot/reduce"
	"github.com/plan-systems/klog"
)

type span struct {
	l, k int
}

// subchains lists the sub-chains [l, k) of at least goknot.MinSubchainLen points within [beg, end),
// stepping both ends by density.
func subchains(beg, end, density int) []span {
	var spans []span
	for l := beg; l+goknot.MinSubchainLen <= end; l += density {
		for k := end; k-l >= goknot.MinSubchainLen; k -= density {
			spans = append(spans, span{l, k})
		}
	}
	return spans
}

// cellSeed gives each sub-chain its own random source, so results do not depend on worker scheduling.
func cellSeed(seed int64, s span) int64 {
	return seed ^ (int64(s.l)<<32 | int64(s.k))
}

// matrixResult computes the invariant of every sub-chain of ch, keeping the cells that are knotted.
//
// A cell is trivial if its value is the unknot value, or for a distribution, if the unknot frequency is at least
// 1 - opts.Level.  Trivial cells and cells with too many crossings are left out.
func (r *runner) matrixResult(ctx context.Context, ch *chain.Chain, seed int64) (goknot.Result, error) {
	beg, end := r.opts.Beg, r.opts.End
	if end < 0 || end > ch.Len() {
		end = ch.Len()
	}

	memo, err := reduce.NewSharedMemo()
	if err != nil {
		return goknot.Result{}, err
	}
	defer memo.Close()
	r.memo = memo

	spans := subchains(beg, end, r.opts.Density)
	klog.V(2).Infof("matrix %v: %d sub-chains of [%d, %d) over %d workers", r.kind, len(spans), beg, end, r.opts.Workers)

	jobs := make(chan span)
	cells := goknot.NewCellStream()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i := 0; i < r.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				arc := ch.Cut(s.l, s.k)
				res, err := r.chainResult(workCtx, []*chain.Chain{arc}, rand.New(rand.NewSource(cellSeed(seed, s))))
				if err != nil {
					fail(err)
					cancel()
					continue
				}
				cells.PushCell(goknot.Cell{L: s.l, K: s.k, Result: res})
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, s := range spans {
			select {
			case jobs <- s:
			case <-workCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		cells.Close()
	}()

	unknot := r.unknot()
	level := r.opts.Level
	knotted := cells.Select(func(cell goknot.Cell) bool {
		switch cell.Result.Kind {
		case goknot.ResultTooManyCrossings:
			return false
		case goknot.ResultValue:
			return cell.Result.Value != unknot
		case goknot.ResultDistribution:
			return cell.Result.Dist.Find(unknot) < 1-level
		}
		return true
	})
	mat := knotted.Collect(beg, end)

	if firstErr != nil {
		return goknot.Result{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return goknot.Result{}, err
	}

	hits, misses := memo.Stats()
	klog.V(2).Infof("matrix %v: %d knotted cells, memo %d hits / %d misses", r.kind, len(mat.Cells), hits, misses)

	return goknot.Result{
		Kind:   goknot.ResultMatrix,
		Matrix: mat,
	}, nil
}
