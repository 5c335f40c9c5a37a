package interpreter

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/interpreter-go/pkg/runtime"
)

const countdownSource = `sub count(n, acc) {
  return acc if n == 0;
  goto &count(n - 1, acc + 1);
}
count(%d, 0)`

func TestTailCallRunsInConstantDepth(t *testing.T) {
	n := 10_000_000
	if testing.Short() {
		n = 100_000
	}
	interp := newTestInterpreter(t, Options{MaxCallDepth: 8})
	program, err := interp.CompileSource("count.kst", []byte(fmt.Sprintf(countdownSource, n)))
	require.NoError(t, err)

	thread := interp.NewThread(io.Discard)
	val, err := thread.Run(context.Background(), program)
	require.NoError(t, err)
	assert.Equal(t, runtime.IntegerValue{Val: int64(n)}, val)
	assert.Equal(t, 1, thread.PeakDepth())
}

func TestTailCallReusesArguments(t *testing.T) {
	got, _ := mustRun(t, `sub inner(a, b) { return a . "-" . b; }
sub outer(a, b) { goto &inner; }
outer("x", "y")`)
	assert.Equal(t, "x-y", got)
}

func TestTailCallBetweenSubroutines(t *testing.T) {
	interp := newTestInterpreter(t, Options{MaxCallDepth: 4})
	got, _, err := runSource(t, interp, `sub is_even(n) {
  return 1 if n == 0;
  goto &is_odd(n - 1);
}
sub is_odd(n) {
  return 0 if n == 0;
  goto &is_even(n - 1);
}
is_even(10001) . is_odd(10001)`)
	require.NoError(t, err)
	assert.Equal(t, "01", runtime.Stringify(got))
}

func TestTailCallToClosure(t *testing.T) {
	got, _ := mustRun(t, `my k = sub (x) { return x * 2; };
sub apply(f, x) { goto &f(x + 1); }
apply(k, 20)`)
	assert.Equal(t, "42", got)
}

func TestTailCallToBuiltin(t *testing.T) {
	got, out := mustRun(t, `sub shout(s) { goto &say(s . "!"); }
shout("hey")`)
	assert.Equal(t, "1", got)
	assert.Equal(t, "hey!\n", out)
}

// A signal issued by a tail-called subroutine still reaches the loop of the
// frame that made the original call.
func TestTailCalledSubroutineSignals(t *testing.T) {
	got, _ := mustRun(t, `sub stop { last LOOP; }
sub relay { goto &stop; }
my n = 0;
LOOP: while (1) {
  n += 1;
  relay() if n == 3;
}
n`)
	assert.Equal(t, "3", got)
}

func TestTailCallToNonCallable(t *testing.T) {
	_, _, err := runSource(t, newTestInterpreter(t, Options{}), `my x = 1;
sub f { goto &x(); }
f()`)
	require.Error(t, err)
	assert.True(t, runtime.IsRuntimeErrorKind(err, runtime.ErrNotCallable))
}
