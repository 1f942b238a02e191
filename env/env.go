// Package env implements the call-stack-of-block-scopes environment model:
// one Frame per active call (the bottom frame is global), each holding a
// stack of block-scoped variable maps.
package env

import "github.com/loxmix/loxmix/value"

// Frame is one call's local memory: a stack of block scopes, innermost
// last. Declaring a variable always writes into the innermost block;
// entering `{ }` pushes a new block, leaving it pops one.
type Frame struct {
	Blocks []map[string]value.Value
}

func newFrame() *Frame {
	return &Frame{Blocks: []map[string]value.Value{{}}}
}

// Push opens a new, empty block scope.
func (f *Frame) Push() {
	f.Blocks = append(f.Blocks, map[string]value.Value{})
}

// Pop closes the innermost block scope.
func (f *Frame) Pop() {
	if len(f.Blocks) > 1 {
		f.Blocks = f.Blocks[:len(f.Blocks)-1]
	}
}

func (f *Frame) top() map[string]value.Value {
	return f.Blocks[len(f.Blocks)-1]
}

// find returns the innermost block's map containing name, or nil.
func (f *Frame) find(name string) map[string]value.Value {
	for i := len(f.Blocks) - 1; i >= 0; i-- {
		if _, ok := f.Blocks[i][name]; ok {
			return f.Blocks[i]
		}
	}
	return nil
}

// Env is the full runtime environment: a stack of call frames (Stack[0] is
// global) plus the registry of top-level function declarations.
type Env struct {
	Stack    []*Frame
	Registry map[string]*value.Function
}

// New creates an environment with just the global frame.
func New() *Env {
	return &Env{
		Stack:    []*Frame{newFrame()},
		Registry: map[string]*value.Function{},
	}
}

// Current returns the innermost active call frame.
func (e *Env) Current() *Frame {
	return e.Stack[len(e.Stack)-1]
}

// Global returns the bottom frame, shared by the whole run.
func (e *Env) Global() *Frame {
	return e.Stack[0]
}

// InGlobalFrame reports whether the current frame is the global one, i.e.
// no call is in progress.
func (e *Env) InGlobalFrame() bool {
	return len(e.Stack) == 1
}

// PushCall enters a new call frame, optionally pre-populated with a
// closure's captured bindings merged directly into its single block, so a
// captured variable is visible exactly like a parameter for the duration
// of the call.
func (e *Env) PushCall(capture map[string]value.Value) *Frame {
	f := newFrame()
	for k, v := range capture {
		f.top()[k] = v
	}
	e.Stack = append(e.Stack, f)
	return f
}

// PopCall leaves the current call frame.
func (e *Env) PopCall() {
	if len(e.Stack) > 1 {
		e.Stack = e.Stack[:len(e.Stack)-1]
	}
}

// Declare binds name to val in the innermost block of the current frame,
// shadowing any outer binding of the same name.
func (e *Env) Declare(name string, val value.Value) {
	f := e.Current()
	f.top()[name] = val
}

// Lookup resolves name to a value, searching in order: the current frame's
// blocks (innermost first), the explicit closure capture (if any and not
// already found — kept for fidelity with the documented lookup order, even
// though PushCall's merge usually makes this redundant), the global frame's
// blocks (skipped when the current frame already is the global frame), and
// finally the function registry bound as a Func value.
func (e *Env) Lookup(name string, capture map[string]value.Value) (value.Value, bool) {
	cur := e.Current()
	if blk := cur.find(name); blk != nil {
		return blk[name], true
	}
	if capture != nil {
		if v, ok := capture[name]; ok {
			return v, true
		}
	}
	if !e.InGlobalFrame() {
		if blk := e.Global().find(name); blk != nil {
			return blk[name], true
		}
	}
	if fn, ok := e.Registry[name]; ok {
		return value.Func{Object: &value.FunctionObject{Fn: fn}}, true
	}
	return nil, false
}

// Assign updates an existing binding for name, searching the current frame
// then the global frame (the capture map is not consulted: a closure
// variable is only reachable through the merged call-frame copy). It
// reports false when name is unbound anywhere assignable.
func (e *Env) Assign(name string, val value.Value) bool {
	cur := e.Current()
	if blk := cur.find(name); blk != nil {
		blk[name] = val
		return true
	}
	if !e.InGlobalFrame() {
		if blk := e.Global().find(name); blk != nil {
			blk[name] = val
			return true
		}
	}
	return false
}

// SyncCapture reads back the current frame's value for each captured key
// (falling back to the existing captured value when the call never
// touched that key) and writes it into capture, the mechanism by which a
// closure observes mutations made during the call it just finished.
func (e *Env) SyncCapture(capture map[string]value.Value) {
	cur := e.Current()
	for k := range capture {
		if blk := cur.find(k); blk != nil {
			capture[k] = blk[k]
		}
	}
}

// DeclareFunction registers a function declaration per the grammar's
// closure rule: at the top level it is registered globally by name; inside
// a call it becomes a closure value bound in the current block, capturing
// a snapshot of the innermost block scope at declaration time.
func (e *Env) DeclareFunction(fn *value.Function) {
	if e.InGlobalFrame() {
		e.Registry[fn.Name] = fn
		return
	}
	capture := map[string]value.Value{}
	for k, v := range e.Current().top() {
		capture[k] = v
	}
	obj := &value.FunctionObject{Fn: fn, Capture: capture}
	e.Declare(fn.Name, value.Func{Object: obj})
}
