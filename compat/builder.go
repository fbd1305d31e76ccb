package compat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lixenwraith/logmanager"
)

// Builder creates adapters for gnet, fasthttp and zap that share one Target.
// Without WithTarget the adapters emit into logmanager.DefaultRegistry().
type Builder struct {
	target Target
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithTarget specifies the registry, dispatcher or manager to emit into
func (b *Builder) WithTarget(t Target) *Builder {
	if t == nil {
		b.err = fmt.Errorf("logmanager/compat: provided target cannot be nil")
		return b
	}
	b.target = t
	return b
}

// WithManager is WithTarget for a *logmanager.Manager
func (b *Builder) WithManager(m *logmanager.Manager) *Builder {
	if m == nil {
		b.err = fmt.Errorf("logmanager/compat: provided manager cannot be nil")
		return b
	}
	return b.WithTarget(m)
}

// getTarget resolves the target to be used
func (b *Builder) getTarget() (Target, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.target == nil {
		b.target = logmanager.DefaultRegistry()
	}
	return b.target, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	t, err := b.getTarget()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(t, opts...), nil
}

// BuildStructuredGnet creates a gnet adapter that extracts "key=%v" fields
// from format strings
func (b *Builder) BuildStructuredGnet(opts ...GnetOption) (*GnetAdapter, error) {
	return b.BuildGnet(append([]GnetOption{WithFieldExtraction()}, opts...)...)
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	t, err := b.getTarget()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(t, opts...), nil
}

// BuildZap creates a *zap.Logger writing through the target
func (b *Builder) BuildZap(opts ...zap.Option) (*zap.Logger, error) {
	t, err := b.getTarget()
	if err != nil {
		return nil, err
	}
	return NewZapLogger(t, opts...), nil
}

// GetTarget returns the resolved target
func (b *Builder) GetTarget() (Target, error) {
	return b.getTarget()
}

// --- Example Usage ---
//
//	m, err := logmanager.NewBuilder().LevelString("debug").Build()
//	if err != nil { /* handle error */ }
//	defer m.Shutdown()
//
//	builder := compat.NewBuilder().WithManager(m)
//
//	gnetLogger, _ := builder.BuildGnet()
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//
//	zapLogger, _ := builder.BuildZap()
//	zapLogger.Named("db").Info("connected", zap.String("host", "localhost"))
