package proxysdk

import "fmt"

// Status is the result code returned by every host call. It implements
// error so host-call wrappers can return it directly; StatusOK is never
// returned as an error.
type Status uint32

const (
	StatusOK Status = iota
	// StatusNotFound means the result could not be found, e.g. a provided key did not appear in a table.
	StatusNotFound
	// StatusBadArgument means an argument was bad, e.g. did not conform to the required range.
	StatusBadArgument
	// StatusSerializationFailure means a protobuf could not be serialized.
	StatusSerializationFailure
	// StatusParseFailure means a protobuf could not be parsed.
	StatusParseFailure
	// StatusBadExpression means a provided expression (e.g. "foo.bar") was illegal or unrecognized.
	StatusBadExpression
	// StatusInvalidMemoryAccess means a provided memory range was not legal.
	StatusInvalidMemoryAccess
	// StatusEmpty means data was requested from an empty container.
	StatusEmpty
	// StatusCasMismatch means the provided CAS did not match that of the stored data.
	StatusCasMismatch
	// StatusResultMismatch means the returned result was unexpected, e.g. of the incorrect size.
	StatusResultMismatch
	// StatusInternalFailure indicates an internal failure in the host; check the surrounding system's logs.
	StatusInternalFailure
	// StatusBrokenConnection means the connection/stream/pipe was broken/closed unexpectedly.
	StatusBrokenConnection
	// StatusUnimplemented means the feature is not implemented.
	StatusUnimplemented
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "Ok"
	case StatusNotFound:
		return "NotFound"
	case StatusBadArgument:
		return "BadArgument"
	case StatusSerializationFailure:
		return "SerializationFailure"
	case StatusParseFailure:
		return "ParseFailure"
	case StatusBadExpression:
		return "BadExpression"
	case StatusInvalidMemoryAccess:
		return "InvalidMemoryAccess"
	case StatusEmpty:
		return "Empty"
	case StatusCasMismatch:
		return "CasMismatch"
	case StatusResultMismatch:
		return "ResultMismatch"
	case StatusInternalFailure:
		return "InternalFailure"
	case StatusBrokenConnection:
		return "BrokenConnection"
	case StatusUnimplemented:
		return "Unimplemented"
	default:
		return fmt.Sprintf("Status(%d)", uint32(s))
	}
}

func (s Status) Error() string {
	return "host call failed: " + s.String()
}

// statusError converts a raw status into an error, mapping StatusOK to nil.
func statusError(s Status) error {
	if s == StatusOK {
		return nil
	}
	return s
}
