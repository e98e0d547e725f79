package interp

import (
	"fmt"
	"sync"
)

// Frame is one unit of accumulated state: bindings and recorded imports,
// chained to a parent. It implements kernel.Frame. Bindings added after a
// child is created are still visible to the child through the chain, so
// classpath/import lineage is preserved from parent to child.
type Frame struct {
	id     string
	parent *Frame

	mu      sync.Mutex
	vals    map[string]value
	imports []string
}

// ID identifies the frame for evaluator-side bookkeeping.
func (f *Frame) ID() string { return f.id }

func newFrame(id string, parent *Frame) *Frame {
	return &Frame{
		id:     id,
		parent: parent,
		vals:   make(map[string]value),
	}
}

// lookup walks the parent chain, innermost first.
func (f *Frame) lookup(name string) (value, bool) {
	for fr := f; fr != nil; fr = fr.parent {
		fr.mu.Lock()
		v, ok := fr.vals[name]
		fr.mu.Unlock()
		if ok {
			return v, true
		}
	}
	return value{}, false
}

// bind adds a binding to this frame, shadowing any parent binding.
func (f *Frame) bind(name string, v value) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vals[name] = v
}

// recordImport appends an import declaration.
func (f *Frame) recordImport(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports = append(f.imports, raw)
}

// Imports returns the declarations recorded on this frame only.
func (f *Frame) Imports() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.imports))
	copy(out, f.imports)
	return out
}

// names collects all binding names visible from f, for completion.
func (f *Frame) names() []string {
	seen := make(map[string]bool)
	var out []string
	for fr := f; fr != nil; fr = fr.parent {
		fr.mu.Lock()
		for name := range fr.vals {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
		fr.mu.Unlock()
	}
	return out
}

// snapshot captures the visible bindings for background evaluation after
// the originating submission has finished.
func (f *Frame) snapshot() *Frame {
	snap := newFrame(fmt.Sprintf("%s-snapshot", f.id), nil)
	for fr := f; fr != nil; fr = fr.parent {
		fr.mu.Lock()
		for name, v := range fr.vals {
			if _, ok := snap.vals[name]; !ok {
				snap.vals[name] = v
			}
		}
		fr.mu.Unlock()
	}
	return snap
}
