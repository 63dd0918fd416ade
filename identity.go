package angzarr

import (
	"fmt"

	"github.com/google/uuid"

	pb "github.com/eventframe/angzarr/pb"
)

// identityNamespace scopes the deterministic root UUIDs this module mints
// so that two different systems hashing the same domain/business-key pair
// never collide.
const identityNamespace = "angzarr"

// DeriveRoot computes the deterministic aggregate root UUID for a business
// key within a domain: the same (domain, businessKey) pair always yields
// the same root, so callers never need a lookup table to find an
// aggregate's identity before it has ever been loaded.
func DeriveRoot(domain, businessKey string) *pb.UUID {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(identityNamespace+domain+businessKey))
	return &pb.UUID{Value: id[:]}
}

// NewRandomRoot mints a random (v4) root UUID for aggregates that have no
// natural business key and are addressed purely by their generated id.
func NewRandomRoot() *pb.UUID {
	id := uuid.New()
	return &pb.UUID{Value: id[:]}
}

// RootString renders a UUID proto as its canonical string form.
func RootString(root *pb.UUID) (string, error) {
	var raw []byte
	if root != nil {
		raw = root.Value
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return "", fmt.Errorf("angzarr: invalid root UUID: %w", err)
	}
	return id.String(), nil
}
