package roundtrip

import (
	"fmt"
	"maps"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"roundtrip-generator/compose"
	"roundtrip-generator/shape"
)

// Union marks a struct as a tagged union. See shape.Union.
type Union = shape.Union

// Registry derives and caches transformers. It is safe for concurrent use.
type Registry struct {
	logger *zap.Logger

	mu      sync.RWMutex
	aliases map[reflect.Type]*compose.Alias
	// generation counts alias registrations; transformers derived from an
	// older generation are not cached.
	generation uint64

	transformers sync.Map // pairKey -> *Transformer
}

type pairKey struct{ src, dst reflect.Type }

type Option func(*Registry)

// WithLogger sets the logger derivations are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:  zap.NewNop(),
		aliases: make(map[reflect.Type]*compose.Alias),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the registry used by Derive, MustDerive, To and Alias.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		if defaultRegistry == nil {
			defaultRegistry = NewRegistry()
		}
	})

	return defaultRegistry
}

// Alias registers fn, a func(From) To, declaring that decoding any encoding
// as To yields the same value as decoding it as From and calling fn.
// Shapes compatible with From become compatible with To.
func (r *Registry) Alias(fn any) error {
	parsed, err := ParseAlias(fn)
	if err != nil {
		return err
	}

	from, err := shape.Of(parsed.From)
	if err != nil {
		return fmt.Errorf("alias %s: %w", parsed, err)
	}

	to, err := shape.Of(parsed.To)
	if err != nil {
		return fmt.Errorf("alias %s: %w", parsed, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.aliases[parsed.To] = &compose.Alias{
		Name: parsed.String(),
		From: from,
		To:   to,
		Func: parsed.Func,
	}
	r.generation++
	r.transformers.Clear()

	r.logger.Debug("alias registered",
		zap.Stringer("from", parsed.From),
		zap.Stringer("to", parsed.To),
		zap.String("func", parsed.String()))

	return nil
}

// Transformer returns the transformer from src to dst, deriving it on first
// use. The error is a definition-time error: no transformation exists.
func (r *Registry) Transformer(src, dst reflect.Type) (*Transformer, error) {
	key := pairKey{src, dst}
	if cached, ok := r.transformers.Load(key); ok {
		return cached.(*Transformer), nil
	}

	srcShape, err := shape.Of(src)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src, err)
	}

	dstShape, err := shape.Of(dst)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", dst, err)
	}

	r.mu.RLock()
	aliases, generation := maps.Clone(r.aliases), r.generation
	r.mu.RUnlock()

	plan, err := compose.Compose(srcShape, dstShape, compose.Options{
		Alias: func(s *shape.Shape) (*compose.Alias, bool) {
			alias, ok := aliases[s.Type]
			return alias, ok
		},
	})
	if err != nil {
		r.logger.Debug("no transformation", zap.Stringer("source", src), zap.Stringer("target", dst), zap.Error(err))
		return nil, err
	}

	tr, err := newTransformer(src, dst, plan)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("transformer derived",
		zap.Stringer("source", src),
		zap.Stringer("target", dst),
		zap.Stringer("plan", plan))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.generation != generation {
		return tr, nil
	}

	actual, _ := r.transformers.LoadOrStore(key, tr)
	return actual.(*Transformer), nil
}

// Into transforms src into the value dst points to.
func (r *Registry) Into(src, dst any) error {
	if src == nil {
		return fmt.Errorf("roundtrip: source must not be nil")
	}

	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return fmt.Errorf("roundtrip: destination must be a non-nil pointer, got %T", dst)
	}

	tr, err := r.Transformer(reflect.TypeOf(src), ptr.Type().Elem())
	if err != nil {
		return err
	}

	ptr.Elem().Set(tr.Apply(reflect.ValueOf(src)))
	return nil
}

// Alias registers fn with the default registry.
func Alias(fn any) error {
	return Default().Alias(fn)
}
