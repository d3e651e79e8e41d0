package proxysdk

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Shared data is a VM-wide key/value store with optimistic concurrency.
// Every stored value carries a CAS number; a zero CAS on read means the key
// has never been written.

// GetSharedData reads a key. ok is false when the key has never been
// written.
func GetSharedData(key string) (value []byte, cas uint32, ok bool, err error) {
	value, cas, err = hostGetSharedData(key)
	if errors.Is(err, StatusNotFound) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	return value, cas, cas != 0, nil
}

// SetSharedData writes a key. A zero CAS writes unconditionally; otherwise
// the write fails with StatusCasMismatch unless cas matches the stored
// value.
func SetSharedData(key string, value []byte, cas uint32) error {
	return hostSetSharedData(key, value, cas)
}

// UpdateSharedData applies update to the current value of key until the
// compare-and-swap succeeds. update receives nil when the key has never
// been written.
func UpdateSharedData(key string, update func(value []byte) []byte) error {
	for {
		value, cas, _, err := GetSharedData(key)
		if err != nil {
			return err
		}
		err = SetSharedData(key, update(value), cas)
		if errors.Is(err, StatusCasMismatch) {
			continue
		}
		return err
	}
}

// GetSharedObject reads a key and decodes its CBOR value into T. ok is
// false when the key has never been written.
func GetSharedObject[T any](key string) (object T, cas uint32, ok bool, err error) {
	value, cas, ok, err := GetSharedData(key)
	if err != nil || !ok {
		return object, cas, ok, err
	}
	if err := cbor.Unmarshal(value, &object); err != nil {
		return object, cas, false, fmt.Errorf("decode shared object %q: %w", key, err)
	}
	return object, cas, true, nil
}

// SetSharedObject CBOR-encodes object and writes it under key, with the
// same CAS semantics as SetSharedData.
func SetSharedObject[T any](key string, object T, cas uint32) error {
	value, err := cbor.Marshal(object)
	if err != nil {
		return fmt.Errorf("encode shared object %q: %w", key, err)
	}
	return SetSharedData(key, value, cas)
}
