package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/randalmurphal/navflow/pkg/navflow"
)

// Nodes holds one lazily built instance per node type.
type Nodes struct {
	factories *Registry[reflect.Type, *provider]
}

type provider struct {
	once    sync.Once
	factory func() navflow.Node
	node    navflow.Node
}

func (p *provider) get() navflow.Node {
	p.once.Do(func() { p.node = p.factory() })
	return p.node
}

// NewNodes creates an empty type-keyed node registry.
func NewNodes() *Nodes {
	return &Nodes{factories: New[reflect.Type, *provider]()}
}

// Provide registers the factory for T. The factory runs on the first
// Resolve; every later Resolve returns the same instance. Providing T
// again replaces the factory and forgets any instance already built.
func Provide[T navflow.Node](n *Nodes, factory func() T) {
	n.factories.Register(typeKey[T](), &provider{factory: func() navflow.Node { return factory() }})
}

// Resolve returns the shared instance of T.
func Resolve[T navflow.Node](n *Nodes) (T, bool) {
	var zero T
	p, ok := n.factories.Get(typeKey[T]())
	if !ok {
		return zero, false
	}
	t, ok := p.get().(T)
	return t, ok
}

// MustResolve is Resolve that panics when T was never provided.
func MustResolve[T navflow.Node](n *Nodes) T {
	t, ok := Resolve[T](n)
	if !ok {
		panic(fmt.Sprintf("registry: no provider for %s", typeKey[T]()))
	}
	return t
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
