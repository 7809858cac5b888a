package schemastore

import "fmt"

// InvalidRecordError is returned when a stored object cannot be interpreted
// as a schema record.
type InvalidRecordError struct {
	Object string
	Reason string
}

func (e InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid schema record %s: %s", e.Object, e.Reason)
}

// Is returns true if the target is an InvalidRecordError.
func (e InvalidRecordError) Is(target error) bool {
	_, ok := target.(InvalidRecordError)
	return ok
}
