package extract

import (
	"runtime"
	"sync"
)

type job[In any] struct {
	pos int
	in  In
}

type result[In, Out any] struct {
	pos int
	in  In
	out Out
}

// orderedMap pulls inputs from next until it reports false, applies fn to them
// on a pool of workers and calls emit with each input and its output in the
// order next produced them. If emit fails, next is not called again and the
// in-flight results are discarded. A next error is returned once every input
// produced before it has been emitted. If workers is 0, runtime.NumCPU() is
// used. It returns the number of inputs taken from next.
func orderedMap[In, Out any](workers int, next func() (In, bool, error), fn func(In) Out, emit func(In, Out) error) (int, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	stop := make(chan struct{})
	jobs := make(chan job[In], 2*workers)
	results := make(chan result[In, Out], 2*workers)

	// produced and nextErr are written before jobs is closed and read after
	// results is closed.
	var (
		produced int
		nextErr  error
	)
	go func() {
		defer close(jobs)
		for {
			in, ok, err := next()
			if err != nil {
				nextErr = err
				return
			}
			if !ok {
				return
			}
			select {
			case jobs <- job[In]{pos: produced, in: in}:
				produced++
			case <-stop:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- result[In, Out]{pos: j.pos, in: j.in, out: fn(j.in)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	pending := make(map[int]result[In, Out])
	nextPos := 0
	var emitErr error
	for r := range results {
		if emitErr != nil {
			continue
		}
		pending[r.pos] = r
		for {
			rr, ok := pending[nextPos]
			if !ok {
				break
			}
			delete(pending, nextPos)
			nextPos++
			if err := emit(rr.in, rr.out); err != nil {
				emitErr = err
				close(stop)
				break
			}
		}
	}

	if emitErr != nil {
		return produced, emitErr
	}
	return produced, nextErr
}
