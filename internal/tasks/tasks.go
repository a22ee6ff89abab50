// Package tasks is a memoizing task runtime. Work is expressed as
// named functions of argument values; two spawns with the same
// function name and argument key share a single Value handle and a
// single execution. Tasks may emit collectibles, side-channel values
// that bubble up the caller tree until a caller takes them.
//
// The arena of values is per-Run and append-only: a key's node is
// created once and never replaced. Its dependency edges and
// collectibles are guarded by the run's single mutex.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Func is the unit of computation. It must be a deterministic function
// of its arguments and of the values it awaits; the runtime relies on
// that to substitute a cached Value for a second execution.
type Func func(ctx *Context, args []interface{}) (interface{}, error)

// Keyable lets argument types provide their own stable task key.
// Types that don't implement it are keyed by their fmt representation.
type Keyable interface {
	TaskKey() string
}

type collectible struct {
	value interface{}
	taken bool
}

// node is one entry in the run's value arena.
type node struct {
	id     int
	key    string
	parent *node
	value  *Value

	done chan struct{}

	// written once before done is closed
	result interface{}
	err    error

	// guarded by Run.mu
	deps         []*node
	depSet       map[*node]bool
	collectibles []*collectible
}

// Value is an immutable, shareable handle to the output of a task.
// Values obtained from the same key within one Run are the same
// handle.
type Value struct {
	node *node
}

// Run owns the arena of task values for one build. Cancelling the
// run's context cancels every task still awaiting a dependency.
type Run struct {
	ctx context.Context

	mu     sync.Mutex
	nodes  map[string]*node
	nextID int
	root   *node
}

// NewRun creates a run whose tasks observe the given context.
func NewRun(ctx context.Context) *Run {
	run := &Run{
		ctx:   ctx,
		nodes: map[string]*node{},
	}
	root := run.newNode("___root___", nil)
	root.result = nil
	close(root.done)
	run.root = root
	return run
}

func (r *Run) newNode(key string, parent *node) *node {
	r.nextID++
	n := &node{
		id:     r.nextID,
		key:    key,
		parent: parent,
		done:   make(chan struct{}),
		depSet: map[*node]bool{},
	}
	n.value = &Value{node: n}
	return n
}

// Context returns the root task context, used to spawn and await tasks
// from outside the runtime.
func (r *Run) Context() *Context {
	return &Context{run: r, node: r.root}
}

// Context is the ambient handle a task uses to spawn dependencies,
// await values, and emit collectibles.
type Context struct {
	run  *Run
	node *node
}

// Done exposes the run's cancellation signal for long-running tasks.
func (c *Context) Done() <-chan struct{} {
	return c.run.ctx.Done()
}

func argKey(arg interface{}) string {
	switch a := arg.(type) {
	case *Value:
		return fmt.Sprintf("value#%d", a.node.id)
	case Keyable:
		return a.TaskKey()
	default:
		return fmt.Sprintf("%T(%v)", arg, arg)
	}
}

func taskKey(name string, args []interface{}) string {
	keys := make([]string, len(args))
	for i, arg := range args {
		keys[i] = argKey(arg)
	}
	return name + "(" + strings.Join(keys, ", ") + ")"
}

// Spawn schedules fn under the key (name, args). If a task with the
// same key already exists its Value is returned and fn is not run
// again.
func (c *Context) Spawn(name string, fn Func, args ...interface{}) *Value {
	value, _ := c.spawn(name, fn, args, false)
	return value
}

// SpawnWithCycle behaves like Spawn, except that reentering a key that
// is still executing somewhere up the caller chain yields an
// already-completed Value instead of the in-flight one. This is the
// contract that lets a recursive graph walk revisit a node on a cycle
// without deadlocking.
func (c *Context) SpawnWithCycle(name string, fn Func, args ...interface{}) *Value {
	value, _ := c.spawn(name, fn, args, true)
	return value
}

func (c *Context) spawn(name string, fn Func, args []interface{}, cycle bool) (*Value, bool) {
	key := taskKey(name, args)

	c.run.mu.Lock()
	if existing, ok := c.run.nodes[key]; ok {
		if cycle && c.isAncestorLocked(existing) {
			placeholder := c.run.newNode(key+" (cycle)", c.node)
			close(placeholder.done)
			c.run.mu.Unlock()
			return placeholder.value, false
		}
		c.run.mu.Unlock()
		return existing.value, false
	}
	n := c.run.newNode(key, c.node)
	c.run.nodes[key] = n
	c.run.mu.Unlock()

	go func() {
		taskCtx := &Context{run: c.run, node: n}
		result, err := fn(taskCtx, args)
		n.result = result
		n.err = err
		close(n.done)
	}()

	return n.value, true
}

// isAncestorLocked reports whether target appears on the spawner chain
// of the current task. Callers must hold run.mu.
func (c *Context) isAncestorLocked(target *node) bool {
	for n := c.node; n != nil; n = n.parent {
		if n == target {
			return true
		}
	}
	return false
}

// Get suspends until the value has a result and returns it, recording
// a dependency edge from the current task to the value. A failed task
// propagates its error to every dependent that does not recover.
func (v *Value) Get(ctx *Context) (interface{}, error) {
	ctx.run.mu.Lock()
	if !ctx.node.depSet[v.node] {
		ctx.node.depSet[v.node] = true
		ctx.node.deps = append(ctx.node.deps, v.node)
	}
	ctx.run.mu.Unlock()

	select {
	case <-v.node.done:
		return v.node.result, v.node.err
	case <-ctx.run.ctx.Done():
		return nil, errors.Wrapf(ctx.run.ctx.Err(), "awaiting %v", v.node.key)
	}
}

// Emit attaches a collectible to the current task. Each call adds
// exactly one collectible.
func (c *Context) Emit(value interface{}) {
	c.run.mu.Lock()
	c.node.collectibles = append(c.node.collectibles, &collectible{value: value})
	c.run.mu.Unlock()
}

// PeekCollectibles returns the collectibles matching filter that were
// transitively emitted under `from`, without consuming them. Call it
// after `from` has settled; dependency edges only exist for values
// that were actually awaited.
func (c *Context) PeekCollectibles(from *Value, filter func(interface{}) bool) []interface{} {
	return c.run.gather(from.node, filter, false)
}

// TakeCollectibles is PeekCollectibles, destructively: returned
// collectibles stop bubbling upward and are never returned by a
// subsequent peek or take.
func (c *Context) TakeCollectibles(from *Value, filter func(interface{}) bool) []interface{} {
	return c.run.gather(from.node, filter, true)
}

func (r *Run) gather(from *node, filter func(interface{}) bool, take bool) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []interface{}
	visited := map[*node]bool{}
	queue := []*node{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		for _, item := range n.collectibles {
			if item.taken || (filter != nil && !filter(item.value)) {
				continue
			}
			result = append(result, item.value)
			if take {
				item.taken = true
			}
		}
		queue = append(queue, n.deps...)
	}
	return result
}
