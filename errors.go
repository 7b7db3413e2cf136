package entitycache

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable matches every *StoreError via errors.Is.
	ErrStoreUnavailable = errors.New("entitycache: store unavailable")

	// ErrNoPartitions is returned by Random when called without partitions.
	ErrNoPartitions = errors.New("entitycache: at least one partition is required")

	// ErrCorruptRecord is wrapped by the *CodecError Refresh returns when the stored
	// primary record cannot be decoded. Its partitions are unknown, so only a full
	// Load can rebuild the entity.
	ErrCorruptRecord = errors.New("entitycache: stored record cannot be decoded")
)

// ConfigurationError is a programming error: invalid options or a missing source.
// It is always returned before any store I/O.
type ConfigurationError struct {
	Cache  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Cache == "" {
		return "entitycache: configuration: " + e.Reason
	}
	return fmt.Sprintf("entitycache %q: configuration: %s", e.Cache, e.Reason)
}

// StoreError wraps a failed store round trip. It is never retried and never counted
// as a miss. Key is empty for multi-key commands.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("entitycache: store %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("entitycache: store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// CodecError reports an entity that could not be encoded for writing (Op "encode"), or
// a stored record a write depends on that could not be decoded (Op "decode").
// It is returned before any store write.
type CodecError struct {
	Op  string
	Key string
	Err error
}

func (e *CodecError) Error() string {
	op := e.Op
	if op == "" {
		op = "encode"
	}
	return fmt.Sprintf("entitycache: %s %q: %v", op, e.Key, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// IsStoreUnavailable reports whether err came from a failed store round trip.
func IsStoreUnavailable(err error) bool { return errors.Is(err, ErrStoreUnavailable) }

func storeErr(op, key string, err error) error {
	return &StoreError{Op: op, Key: key, Err: err}
}
