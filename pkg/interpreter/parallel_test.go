package interpreter

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"kestrel/interpreter-go/pkg/runtime"
)

const workerSource = `my log = [];
sub f(limit) { last OUTER if len(log) >= limit; }
foreach my round (1..50) {
  OUTER: foreach my i (1..100) {
    push(log, i);
    f(round % 7);
  }
}
len(log)`

// Threads sharing one compiled program keep separate channels and globals.
func TestThreadsShareProgramsNotState(t *testing.T) {
	interp := newTestInterpreter(t, Options{})
	program, err := interp.CompileSource("worker.kst", []byte(workerSource))
	require.NoError(t, err)

	want, err := interp.Run(context.Background(), program, nil)
	require.NoError(t, err)

	var g errgroup.Group
	results := make([]runtime.Value, 16)
	for i := range results {
		i := i
		g.Go(func() error {
			val, err := interp.NewThread(&bytes.Buffer{}).Run(context.Background(), program)
			results[i] = val
			return err
		})
	}
	require.NoError(t, g.Wait())
	for i, got := range results {
		require.Equal(t, want, got, "thread %d: %s", i, spew.Sdump(got))
	}
}

func TestRunParallel(t *testing.T) {
	interp := newTestInterpreter(t, Options{})
	var jobs []Job
	outs := make([]*bytes.Buffer, 6)
	for i := range outs {
		outs[i] = &bytes.Buffer{}
		source := fmt.Sprintf(`say("job %d"); %d * 2`, i, i)
		if i == 3 {
			source = `sub f { last NOWHERE; } f()`
		}
		program, err := interp.CompileSource(fmt.Sprintf("job%d.kst", i), []byte(source))
		require.NoError(t, err)
		jobs = append(jobs, Job{Name: fmt.Sprintf("job%d", i), Program: program, Out: outs[i]})
	}

	results, err := interp.RunParallel(context.Background(), jobs, 3)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("job%d", i), res.Name)
		if i == 3 {
			assert.True(t, runtime.IsRuntimeErrorKind(res.Err, runtime.ErrUnmatchedLabel))
			continue
		}
		require.NoError(t, res.Err)
		assert.Equal(t, runtime.IntegerValue{Val: int64(i * 2)}, res.Value)
		assert.Equal(t, fmt.Sprintf("job %d\n", i), outs[i].String())
	}
}
