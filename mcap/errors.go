package mcap

import "fmt"

// UnsupportedEncodingError is returned when a channel's schema or message
// encoding is not ros2msg/cdr.
type UnsupportedEncodingError struct {
	Topic    string
	Encoding string
}

func (e UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported encoding %q on %s", e.Encoding, e.Topic)
}

// Is returns true if the target is an UnsupportedEncodingError.
func (e UnsupportedEncodingError) Is(target error) bool {
	_, ok := target.(UnsupportedEncodingError)
	return ok
}

// SchemalessChannelError is returned when a channel has no schema.
type SchemalessChannelError struct {
	Topic string
}

func (e SchemalessChannelError) Error() string {
	return fmt.Sprintf("channel %s has no schema", e.Topic)
}

// Is returns true if the target is a SchemalessChannelError.
func (e SchemalessChannelError) Is(target error) bool {
	_, ok := target.(SchemalessChannelError)
	return ok
}
