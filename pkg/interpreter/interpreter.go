package interpreter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/compiler"
	"kestrel/interpreter-go/pkg/parser"
	"kestrel/interpreter-go/pkg/runtime"
)

const (
	DefaultMaxCallDepth       = 5000
	DefaultCheckpointInterval = 1024
	DefaultCacheSize          = 64
)

type Options struct {
	// MaxCallDepth bounds ordinary (non-tail) call nesting. Zero selects the
	// default, a negative value disables the limit.
	MaxCallDepth int
	// CheckpointInterval is the number of instructions between context checks.
	CheckpointInterval int
	// CacheSize is the number of compiled programs kept by CompileSource.
	CacheSize int
	Logger    *slog.Logger
	Stdout    io.Writer
}

func (o Options) withDefaults() Options {
	if o.MaxCallDepth < 0 {
		o.MaxCallDepth = 0
	} else if o.MaxCallDepth == 0 {
		o.MaxCallDepth = DefaultMaxCallDepth
	}
	if o.CheckpointInterval <= 0 {
		o.CheckpointInterval = DefaultCheckpointInterval
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	return o
}

// Interpreter holds what threads share: options, the logger and the cache
// of compiled programs. Compiled programs are immutable and safe to run on
// several threads at once.
type Interpreter struct {
	opts     Options
	logger   *slog.Logger
	cache    *lru.Cache
	threadID atomic.Int64
}

// New builds an interpreter.
func New(opts Options) (*Interpreter, error) {
	opts = opts.withDefaults()
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create compile cache")
	}
	return &Interpreter{opts: opts, logger: opts.Logger, cache: cache}, nil
}

func (i *Interpreter) Logger() *slog.Logger {
	return i.logger
}

// CompileSource parses and compiles source, reusing a cached program when
// the same origin and text were compiled before.
func (i *Interpreter) CompileSource(origin string, source []byte) (*compiler.Program, error) {
	key := cacheKey(origin, source)
	if cached, ok := i.cache.Get(key); ok {
		i.logger.Debug("compile cache hit", "origin", origin)
		return cached.(*compiler.Program), nil
	}
	p, err := parser.NewModuleParser()
	if err != nil {
		return nil, err
	}
	defer p.Close()
	module, err := p.WithOrigin(origin).ParseModule(source)
	if err != nil {
		return nil, err
	}
	program, err := i.CompileModule(module, origin)
	if err != nil {
		return nil, err
	}
	i.cache.Add(key, program)
	return program, nil
}

// CompileModule compiles an already parsed module without caching.
func (i *Interpreter) CompileModule(module *ast.Module, origin string) (*compiler.Program, error) {
	program, err := compiler.Compile(module, compiler.Options{Origin: origin})
	if err != nil {
		return nil, err
	}
	for _, warning := range program.Warnings {
		i.logger.Warn("compile warning", "origin", origin, "detail", warning)
	}
	i.logger.Debug("compiled program", "origin", origin, "subs", len(program.Subs), "closures", len(program.Anonymous))
	return program, nil
}

// NewThread creates an execution thread writing guest output to out (the
// configured stdout when nil).
func (i *Interpreter) NewThread(out io.Writer) *Thread {
	if out == nil {
		out = i.opts.Stdout
	}
	id := i.threadID.Add(1)
	return newThread(i, id, out)
}

// Run executes program on a fresh thread.
func (i *Interpreter) Run(ctx context.Context, program *compiler.Program, out io.Writer) (runtime.Value, error) {
	return i.NewThread(out).Run(ctx, program)
}

func cacheKey(origin string, source []byte) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(origin)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(source)
	return d.Sum64()
}
