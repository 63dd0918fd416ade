package angzarr

import (
	"strings"
	"testing"
)

func TestTypeRegistry_Register(t *testing.T) {
	r := &typeRegistry{}
	if err := r.register("OrderCreated"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.register("DiscountApplied"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTypeRegistry_Register_ExactDuplicate(t *testing.T) {
	r := &typeRegistry{}
	if err := r.register("OrderCreated"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.register("OrderCreated")
	if err == nil {
		t.Fatal("expected an error registering the same suffix twice")
	}
}

func TestTypeRegistry_Register_AmbiguousSuffix(t *testing.T) {
	cases := []struct {
		name     string
		existing string
		next     string
	}{
		{"next is a suffix of existing", "examples.OrderCreated", "OrderCreated"},
		{"existing is a suffix of next", "OrderCreated", "examples.OrderCreated"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &typeRegistry{}
			if err := r.register(c.existing); err != nil {
				t.Fatalf("unexpected error registering %q: %v", c.existing, err)
			}
			err := r.register(c.next)
			if err == nil {
				t.Fatalf("expected %q to be rejected as ambiguous with %q", c.next, c.existing)
			}
			if !strings.Contains(err.Error(), "ambiguous") {
				t.Errorf("error %q does not mention ambiguity", err)
			}
		})
	}
}

func TestTypeRegistry_Register_DistinctSuffixesCoexist(t *testing.T) {
	r := &typeRegistry{}
	if err := r.register("OrderCreated"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.register("OrderCancelled"); err != nil {
		t.Fatalf("unexpected error: two non-colliding suffixes should coexist, got %v", err)
	}
}

func TestTypeRegistry_MustRegister_PanicsOnCollision(t *testing.T) {
	r := &typeRegistry{}
	r.mustRegister("OrderCreated")

	defer func() {
		if recover() == nil {
			t.Error("expected mustRegister to panic on a colliding suffix")
		}
	}()
	r.mustRegister("OrderCreated")
}
