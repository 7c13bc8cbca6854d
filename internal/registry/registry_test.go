package registry

import (
	"context"
	"testing"

	"github.com/charliedev/reliquary/model"
	"github.com/charliedev/reliquary/services"
)

type stubElementHandler struct{}

func (stubElementHandler) ExtendTypeQuery(context.Context, *model.SearchGroupElement, int64) ([]model.ElementCandidate, error) {
	return nil, nil
}
func (stubElementHandler) GetElements(context.Context, []int64, int64) (map[int64]*model.Element, error) {
	return nil, nil
}
func (stubElementHandler) GetAttributeOptions(context.Context, string, string, int) (*services.OptionSet, bool, error) {
	return nil, false, nil
}
func (stubElementHandler) ModifyAttributeFilterQuery(context.Context, *model.SearchGroupFilter, interface{}, *services.FilterQuery) (bool, error) {
	return false, nil
}

type stubFieldHandler struct{}

func (stubFieldHandler) GetFieldOptions(context.Context, int64, string, int) (*services.OptionSet, error) {
	return nil, nil
}
func (stubFieldHandler) ModifyFilterQuery(context.Context, *model.SearchGroupFilter, interface{}, *services.FilterQuery) error {
	return nil
}

func TestElementTypeRegistration(t *testing.T) {
	r := New()

	if _, ok := r.ElementType("entry"); ok {
		t.Error("lookup on empty registry succeeded")
	}

	r.RegisterElementType("entry", stubElementHandler{})
	r.RegisterElementType("asset", stubElementHandler{})

	if _, ok := r.ElementType("entry"); !ok {
		t.Error("registered type not found")
	}
	names := r.ElementTypeNames()
	if len(names) != 2 {
		t.Errorf("ElementTypeNames() = %v, want 2 names", names)
	}
}

func TestFieldHandlerResolution(t *testing.T) {
	r := New()
	r.RegisterFieldType("plainText", stubFieldHandler{})

	// A field id with no binding resolves to nothing, named for diagnostics.
	if _, name, ok := r.FieldHandler(10); ok || name == "" {
		t.Errorf("unbound field: ok=%v name=%q", ok, name)
	}

	r.BindField(10, "plainText")
	handler, name, ok := r.FieldHandler(10)
	if !ok || handler == nil || name != "plainText" {
		t.Errorf("bound field: ok=%v name=%q", ok, name)
	}

	// Binding to an unregistered type still fails lookup.
	r.BindField(11, "matrix")
	if _, name, ok := r.FieldHandler(11); ok || name != "matrix" {
		t.Errorf("binding to unregistered type: ok=%v name=%q", ok, name)
	}
}
