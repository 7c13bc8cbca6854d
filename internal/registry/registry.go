// Package registry maps element-type and field-type identifiers to their
// capability implementations. Registration happens at process startup; a
// lookup failure is surfaced by callers as a first-class missing-handler
// error rather than a silent no-op.
package registry

import (
	"strconv"
	"sync"

	"github.com/charliedev/reliquary/services"
)

// Registry holds the registered handlers. Safe for concurrent use, though
// registration is expected to finish before serving begins.
type Registry struct {
	mu            sync.RWMutex
	elementTypes  map[string]services.ElementTypeHandler
	fieldTypes    map[string]services.FieldTypeHandler
	fieldBindings map[int64]string // field id -> field type name
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		elementTypes:  make(map[string]services.ElementTypeHandler),
		fieldTypes:    make(map[string]services.FieldTypeHandler),
		fieldBindings: make(map[int64]string),
	}
}

// RegisterElementType registers the handler for an element type name.
func (r *Registry) RegisterElementType(name string, handler services.ElementTypeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elementTypes[name] = handler
}

// RegisterFieldType registers the handler for a field type name.
func (r *Registry) RegisterFieldType(name string, handler services.FieldTypeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fieldTypes[name] = handler
}

// BindField associates a concrete field id with a registered field type.
func (r *Registry) BindField(fieldID int64, typeName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fieldBindings[fieldID] = typeName
}

// ElementType looks up the handler for an element type name.
func (r *Registry) ElementType(name string) (services.ElementTypeHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.elementTypes[name]
	return handler, ok
}

// ElementTypeNames returns the names of all registered element types.
func (r *Registry) ElementTypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.elementTypes))
	for name := range r.elementTypes {
		names = append(names, name)
	}
	return names
}

// FieldHandler resolves a field id to its bound field-type handler. The
// returned name identifies the handler (the field type, or the field id
// itself when no binding exists) for use in missing-handler errors.
func (r *Registry) FieldHandler(fieldID int64) (services.FieldTypeHandler, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	typeName, ok := r.fieldBindings[fieldID]
	if !ok {
		return nil, "field " + strconv.FormatInt(fieldID, 10), false
	}
	handler, ok := r.fieldTypes[typeName]
	return handler, typeName, ok
}
