package angzarr

import (
	"testing"

	pb "github.com/eventframe/angzarr/pb"
)

func TestDeriveRoot_Deterministic(t *testing.T) {
	a := DeriveRoot("order", "customer-42")
	b := DeriveRoot("order", "customer-42")
	if a.Value == nil || b.Value == nil {
		t.Fatal("DeriveRoot returned a nil-valued UUID")
	}
	as, err := RootString(a)
	if err != nil {
		t.Fatalf("RootString(a): %v", err)
	}
	bs, err := RootString(b)
	if err != nil {
		t.Fatalf("RootString(b): %v", err)
	}
	if as != bs {
		t.Errorf("DeriveRoot(\"order\", \"customer-42\") not deterministic: %s != %s", as, bs)
	}
}

func TestDeriveRoot_DistinctKeysDiffer(t *testing.T) {
	cases := []struct {
		domain, businessKey string
	}{
		{"order", "customer-42"},
		{"order", "customer-43"},
		{"inventory", "customer-42"},
	}

	seen := map[string]string{}
	for _, c := range cases {
		root := DeriveRoot(c.domain, c.businessKey)
		s, err := RootString(root)
		if err != nil {
			t.Fatalf("RootString: %v", err)
		}
		key := c.domain + "/" + c.businessKey
		if other, ok := seen[s]; ok {
			t.Errorf("%s and %s both derived root %s", key, other, s)
		}
		seen[s] = key
	}
}

func TestRootString_RoundTrip(t *testing.T) {
	root := DeriveRoot("order", "customer-42")
	s, err := RootString(root)
	if err != nil {
		t.Fatalf("RootString: %v", err)
	}
	if len(s) != 36 {
		t.Errorf("RootString returned %q, want canonical 36-char UUID form", s)
	}

	// A second derivation from the same inputs must render to the exact
	// same string, not just an equal byte slice.
	again, err := RootString(DeriveRoot("order", "customer-42"))
	if err != nil {
		t.Fatalf("RootString: %v", err)
	}
	if s != again {
		t.Errorf("round-trip mismatch: %s != %s", s, again)
	}
}

func TestRootString_InvalidUUID(t *testing.T) {
	if _, err := RootString(&pb.UUID{Value: []byte("too short")}); err == nil {
		t.Error("expected an error for a malformed UUID value")
	}
	if _, err := RootString(nil); err == nil {
		t.Error("expected an error for a nil root")
	}
}

func TestNewRandomRoot_Unique(t *testing.T) {
	a, err := RootString(NewRandomRoot())
	if err != nil {
		t.Fatalf("RootString: %v", err)
	}
	b, err := RootString(NewRandomRoot())
	if err != nil {
		t.Fatalf("RootString: %v", err)
	}
	if a == b {
		t.Error("NewRandomRoot produced the same UUID twice")
	}
}
