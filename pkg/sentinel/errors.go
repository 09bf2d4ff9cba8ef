package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Registries return these
// (optionally wrapped) so the grant service can translate them into
// protocol errors without the stores knowing about wire codes.
//
// These represent factual states about stored artifacts:
// - ErrNotFound: entry does not exist in the registry
// - ErrExpired: entry exists but its expiry has passed
// - ErrUnavailable: backing store (redis, postgres) unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
