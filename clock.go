package angzarr

import "google.golang.org/protobuf/types/known/timestamppb"

// Clock supplies the current time to components that stamp events.
//
// Components take a Clock instead of calling time.Now() directly so that
// tests can substitute FixedClock and assert on exact CreatedAt values.
type Clock interface {
	Now() *timestamppb.Timestamp
}

// SystemClock is the default Clock, backed by the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() *timestamppb.Timestamp { return timestamppb.Now() }

// FixedClock always returns the same instant. Useful in tests.
type FixedClock struct{ At *timestamppb.Timestamp }

func (c FixedClock) Now() *timestamppb.Timestamp { return c.At }

// NewFixedClock builds a FixedClock from an RFC3339 string.
func NewFixedClock(rfc3339 string) (FixedClock, error) {
	ts, err := ParseTimestamp(rfc3339)
	if err != nil {
		return FixedClock{}, err
	}
	return FixedClock{At: ts}, nil
}
