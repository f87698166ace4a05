package evaluator

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/xiaq/persistent/hash"
	"github.com/xiaq/persistent/hashmap"

	"github.com/sandrolain/gojexp/pkg/types"
)

// CurrentName is the variable holding the current document.
const CurrentName = "_"

var emptyBindings = hashmap.New(
	func(a, b any) bool { return a.(string) == b.(string) },
	func(k any) uint32 { return hash.String(k.(string)) },
)

var constants = emptyBindings.
	Assoc("pi", types.Float(math.Pi)).
	Assoc("e", types.Float(math.E))

// Context holds variable bindings.
//
// Bindings live in a persistent map, so Fork only copies the root. A Context
// is safe for concurrent use; concurrent writers race at the binding level
// and the last write wins.
type Context struct {
	mu       sync.RWMutex
	bindings hashmap.Map
}

// NewContext returns a context holding only the constants pi and e.
func NewContext() *Context {
	return &Context{bindings: constants}
}

// NewDocumentContext returns a context with doc bound to the current
// document name. doc is converted with [types.Of].
func NewDocumentContext(doc any) (*Context, error) {
	c := NewContext()
	if err := c.UpdateVariable(CurrentName, doc); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateVariable converts raw with [types.Of] and binds it to name.
func (c *Context) UpdateVariable(name string, raw any) error {
	v, err := types.Of(raw)
	if err != nil {
		return fmt.Errorf("variable %q: %w", name, err)
	}
	c.Set(name, v)
	return nil
}

// Set binds name to v.
func (c *Context) Set(name string, v types.Value) {
	c.mu.Lock()
	c.bindings = c.bindings.Assoc(name, v)
	c.mu.Unlock()
}

// Delete removes the binding of name.
func (c *Context) Delete(name string) {
	c.mu.Lock()
	c.bindings = c.bindings.Dissoc(name)
	c.mu.Unlock()
}

// GetVariable returns the value bound to name, or Null.
func (c *Context) GetVariable(name string) types.Value {
	v, _ := c.Lookup(name)
	return v
}

// Lookup returns the value bound to name and whether it is bound.
func (c *Context) Lookup(name string) (types.Value, bool) {
	c.mu.RLock()
	v, ok := c.bindings.Index(name)
	c.mu.RUnlock()
	if !ok {
		return types.Null, false
	}
	return v.(types.Value), true
}

// Fork returns an independent context starting from the current bindings.
func (c *Context) Fork() *Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Context{bindings: c.bindings}
}

// Names returns the bound names in lexical order.
func (c *Context) Names() []string {
	c.mu.RLock()
	m := c.bindings
	c.mu.RUnlock()
	names := make([]string, 0, m.Len())
	for it := m.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		names = append(names, k.(string))
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bindings.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bindings.Len()
}

// String returns a string representation of the context.
func (c *Context) String() string {
	return fmt.Sprintf("Context{bindings=%d}", c.Len())
}
