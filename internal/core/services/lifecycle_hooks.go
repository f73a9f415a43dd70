package services

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// HookPos identifies a position in the issue lifecycle where hooks are
// invoked.
type HookPos struct {
	Name string
}

var (
	// HookPosPrePublish runs before an issue is published. Hook errors veto
	// the transition.
	HookPosPrePublish = &HookPos{Name: "PrePublish"}
	// HookPosPostPublish runs after an issue was published.
	HookPosPostPublish = &HookPos{Name: "PostPublish"}
	// HookPosPreUnpublish runs before an issue is unpublished. Hook errors
	// veto the transition.
	HookPosPreUnpublish = &HookPos{Name: "PreUnpublish"}
	// HookPosPostUnpublish runs after an issue was unpublished.
	HookPosPostUnpublish = &HookPos{Name: "PostUnpublish"}
	// HookPosPreDelete runs before an issue is deleted. Hook errors veto the
	// deletion.
	HookPosPreDelete = &HookPos{Name: "PreDelete"}
	// HookPosPostDelete runs after an issue was deleted.
	HookPosPostDelete = &HookPos{Name: "PostDelete"}
)

// HookCtx carries the journal and issue under transition to a hook.
type HookCtx struct {
	Pos     *HookPos
	Journal *domain.Journal
	Issue   *domain.Issue
	ActorID string
}

// LifecycleHook is a short piece of program invoked around issue lifecycle
// transitions. Hooks at pre-positions may veto the transition by returning an
// error; errors from post-position hooks are logged and ignored.
type LifecycleHook interface {
	Func(ctx context.Context, hctx HookCtx) error
}

// LifecycleHookFunc adapts a plain function to a LifecycleHook.
type LifecycleHookFunc func(ctx context.Context, hctx HookCtx) error

// Func invokes the wrapped function.
func (f LifecycleHookFunc) Func(ctx context.Context, hctx HookCtx) error {
	return f(ctx, hctx)
}

// LifecycleHooks holds registered hooks per position, invoked in registration
// order. The zero value is ready to use. Registration is expected to happen
// during wiring, before any lifecycle operation runs; invocation is read-only.
type LifecycleHooks struct {
	hooks map[string][]LifecycleHook
}

// NewLifecycleHooks creates an empty hook registry.
func NewLifecycleHooks() *LifecycleHooks {
	return &LifecycleHooks{hooks: make(map[string][]LifecycleHook)}
}

// AcceptHook registers a hook at the given position.
func (h *LifecycleHooks) AcceptHook(pos *HookPos, hook LifecycleHook) {
	if h.hooks == nil {
		h.hooks = make(map[string][]LifecycleHook)
	}
	h.hooks[pos.Name] = append(h.hooks[pos.Name], hook)
}

// NumHooks returns the number of hooks registered at the given position.
func (h *LifecycleHooks) NumHooks(pos *HookPos) int {
	return len(h.hooks[pos.Name])
}

// invoke runs the hooks registered at the position in registration order and
// returns the first error, which callers at pre-positions treat as a veto.
func (h *LifecycleHooks) invoke(ctx context.Context, hctx HookCtx) error {
	for _, hook := range h.hooks[hctx.Pos.Name] {
		if err := hook.Func(ctx, hctx); err != nil {
			return err
		}
	}
	return nil
}
