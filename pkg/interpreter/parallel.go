package interpreter

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"

	"kestrel/interpreter-go/pkg/compiler"
	"kestrel/interpreter-go/pkg/runtime"
)

// Job is one script for RunParallel.
type Job struct {
	Name    string
	Program *compiler.Program
	Out     io.Writer
}

type JobResult struct {
	Name  string
	Value runtime.Value
	Err   error
}

// RunParallel runs each job on its own Thread using a bounded worker pool.
// Results are returned in job order.
func (i *Interpreter) RunParallel(ctx context.Context, jobs []Job, workers int) ([]JobResult, error) {
	if workers <= 0 {
		workers = ants.DefaultAntsPoolSize
	}
	pool, err := ants.NewPool(workers, ants.WithExpiryDuration(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	results := make([]JobResult, len(jobs))
	var wg sync.WaitGroup
	for idx, job := range jobs {
		idx, job := idx, job
		results[idx].Name = job.Name
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			thread := i.NewThread(job.Out)
			val, err := thread.Run(ctx, job.Program)
			results[idx].Value = val
			results[idx].Err = err
			i.logger.Debug("parallel job finished", "job", job.Name, "thread", thread.ID(), "ok", err == nil)
		})
		if err != nil {
			wg.Done()
			results[idx].Err = errors.Wrapf(err, "submit %s", job.Name)
		}
	}
	wg.Wait()
	return results, nil
}
