package navflow

import (
	"context"
	"sync"
)

// Handle is the presenter's handle to materialized UI: a view, a view
// model, a terminal screen. The controller never inspects it; it travels to
// the host stack inside a HostScreen and back to the presenter in Update.
type Handle any

// Completion reports a screen's output. Presenters call it at most once per
// presentation; Once guards adapters that cannot guarantee that.
type Completion func(output any)

// Presenter materializes UI-bearing nodes.
//
// The controller asks presenters in order and uses the first whose
// CanHandle returns true. Present must not call into the controller
// synchronously except through done.
type Presenter interface {
	CanHandle(node Node) bool
	Present(ctx context.Context, node Node, input any, done Completion) (Handle, error)
}

// Updater is implemented by presenters that can deliver new input to a
// screen that is already on the host stack. The controller uses it when a
// backward or "none" transition arrives at a presented screen.
type Updater interface {
	Update(ctx context.Context, handle Handle, input any) error
}

// PresenterFunc adapts a matcher and a present function to Presenter.
type PresenterFunc struct {
	Match func(node Node) bool
	Fn    func(ctx context.Context, node Node, input any, done Completion) (Handle, error)
}

// CanHandle calls Match. A nil Match handles every node.
func (p PresenterFunc) CanHandle(node Node) bool {
	return p.Match == nil || p.Match(node)
}

// Present calls Fn.
func (p PresenterFunc) Present(ctx context.Context, node Node, input any, done Completion) (Handle, error) {
	return p.Fn(ctx, node, input, done)
}

// Once wraps done so that only the first call is delivered.
func Once(done Completion) Completion {
	var once sync.Once
	return func(output any) {
		once.Do(func() { done(output) })
	}
}

// selectPresenter returns the first presenter that can handle n.
func selectPresenter(presenters []Presenter, n Node) (Presenter, bool) {
	for _, p := range presenters {
		if p.CanHandle(n) {
			return p, true
		}
	}
	return nil, false
}
