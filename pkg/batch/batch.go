// Package batch runs several independent analyses concurrently. Each
// entry point gets its own fact.Database and symexec.Context — nothing
// is shared, so no locking is needed beyond the task channel.
package batch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mvanbem/decompiler/pkg/discover"
	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/pipeline"
	"github.com/mvanbem/decompiler/pkg/symexec"

	gcblock "github.com/mvanbem/decompiler/pkg/block"
)

// Analysis is one entry point's complete output: the fact database,
// the expression context, and the pipeline's resolved return values.
type Analysis struct {
	Entry  fact.Address
	DB     *fact.Database
	Ctx    *symexec.Context
	Result *pipeline.Result
	Err    error
}

// Progress is reported periodically while a batch runs.
type Progress struct {
	Completed, Total int64
}

// Run analyzes every entry point in entries against reader, using up to
// concurrency worker goroutines. If report is non-nil it is called from
// a single dedicated goroutine roughly every interval until all analyses
// complete, and once more from the calling goroutine after they do.
// Results are returned in the same order as entries.
func Run(entries []fact.Address, reader discover.WordReader, concurrency int, interval time.Duration, report func(Progress)) []Analysis {
	if concurrency < 1 {
		concurrency = 1
	}

	type task struct {
		index int
		entry fact.Address
	}
	tasks := make(chan task, len(entries))
	for i, e := range entries {
		tasks <- task{index: i, entry: e}
	}
	close(tasks)

	results := make([]Analysis, len(entries))
	var completed atomic.Int64

	var stopReporter chan struct{}
	var reporterDone chan struct{}
	if report != nil {
		stopReporter = make(chan struct{})
		reporterDone = make(chan struct{})
		go func() {
			defer close(reporterDone)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					report(Progress{Completed: completed.Load(), Total: int64(len(entries))})
				case <-stopReporter:
					return
				}
			}
		}()
	}

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results[t.index] = analyzeOne(t.entry, reader)
				completed.Add(1)
			}
		}()
	}
	wg.Wait()

	if report != nil {
		close(stopReporter)
		<-reporterDone
		report(Progress{Completed: completed.Load(), Total: int64(len(entries))})
	}

	return results
}

func analyzeOne(entry fact.Address, reader discover.WordReader) (a Analysis) {
	a.Entry = entry
	defer func() {
		if r := recover(); r != nil {
			a.Err = recoveredError{r}
		}
	}()

	db := fact.NewDatabase()
	discover.Run(db, reader, entry)
	gcblock.Build(db, entry)

	ctx := symexec.NewContext()
	numbered := &symexec.NumberedAllocator{}
	result := pipeline.Run(db, reader, ctx, numbered, entry)

	a.DB = db
	a.Ctx = ctx
	a.Result = result
	return a
}

type recoveredError struct{ v interface{} }

func (e recoveredError) Error() string {
	if err, ok := e.v.(error); ok {
		return err.Error()
	}
	return "panic during analysis"
}
