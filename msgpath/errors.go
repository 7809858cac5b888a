package msgpath

import "fmt"

// DefinitionError is returned when a definition file under a msg path cannot
// be loaded. It wraps the underlying parse error.
type DefinitionError struct {
	File string
	Err  error
}

func (e DefinitionError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e DefinitionError) Unwrap() error {
	return e.Err
}

// Is returns true if the target is a DefinitionError.
func (e DefinitionError) Is(target error) bool {
	_, ok := target.(DefinitionError)
	return ok
}
