package errors

import (
	"strings"
	"unicode"
)

// Reserved element keys. They address the identifier and the label of an
// element and can never be used as property keys.
const (
	ReservedKeyID    = "id"
	ReservedKeyLabel = "label"
)

// ValidatePropertyKey validates a property key before it is written.
//
// The rules mirror the element contract:
//   - The key cannot be empty
//   - The key cannot be one of the reserved keys "id" or "label"
//   - The key cannot contain control characters
func ValidatePropertyKey(key string) error {
	if key == "" {
		return New(ErrCodeNullOrEmpty, "property key can not be empty")
	}
	switch key {
	case ReservedKeyID:
		return New(ErrCodeReservedKey, "property key %q is reserved", ReservedKeyID)
	case ReservedKeyLabel:
		return New(ErrCodeReservedKey, "property key %q is reserved", ReservedKeyLabel)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidArgument, "property key contains invalid control characters")
		}
	}
	return nil
}

// ValidateLabel validates an element label. Labels are required at creation
// and immutable afterwards, so an empty or blank label is always rejected.
func ValidateLabel(kind, label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeNullOrEmpty, "%s label can not be empty", kind)
	}
	return nil
}

// ValidateID validates a user-supplied element identifier in its string form.
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeNullOrEmpty, "%s id can not be empty", kind)
	}
	for _, r := range id {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidArgument, "%s id contains invalid characters", kind)
		}
	}
	return nil
}

// ValidateKeyValues checks the shape of a key/value argument list used at
// element creation: it must have an even length and a string key at every
// even index. Values are validated by the caller since only it knows the
// supported value kinds.
func ValidateKeyValues(keyValues []any) error {
	if len(keyValues)%2 != 0 {
		return New(ErrCodeInvalidArgument, "the provided key/value array must be a multiple of two")
	}
	for i := 0; i < len(keyValues); i += 2 {
		if _, ok := keyValues[i].(string); !ok {
			return New(ErrCodeInvalidArgument, "the provided key/value array must have a string key on even array indices")
		}
	}
	return nil
}
