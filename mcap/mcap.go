package mcap

import (
	"fmt"
	"io"

	"github.com/foxglove/mcap/go/mcap"
)

/*
Package mcap reads ROS2 recordings stored as MCAP files. Channels whose
schemas use the "ros2msg" encoding and whose messages use "cdr" are decoded
into dynamic values, using the concatenated definition bundle stored in each
schema record.
*/

////////////////////////////////////////////////////////////////////////////////

const (
	// SchemaEncodingROS2Msg is the schema encoding of ROS2 message
	// definition bundles.
	SchemaEncodingROS2Msg = "ros2msg"

	// MessageEncodingCDR is the message encoding of CDR payloads.
	MessageEncodingCDR = "cdr"

	megabyte = 1024 * 1024
)

type WriterOption func(*mcap.WriterOptions)

// WithCompression sets the chunk compression of a writer.
func WithCompression(compression mcap.CompressionFormat) WriterOption {
	return func(o *mcap.WriterOptions) {
		o.Compression = compression
	}
}

// NewWriter returns a new mcap writer with sensible defaults.
func NewWriter(w io.Writer, options ...WriterOption) (*mcap.Writer, error) {
	opts := &mcap.WriterOptions{
		IncludeCRC:  true,
		Chunked:     true,
		ChunkSize:   4 * megabyte,
		Compression: "zstd",
	}
	for _, opt := range options {
		opt(opts)
	}
	writer, err := mcap.NewWriter(w, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build writer: %w", err)
	}
	return writer, nil
}

// NewReader returns a new mcap reader.
func NewReader(r io.Reader) (*mcap.Reader, error) {
	reader, err := mcap.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to build reader: %w", err)
	}
	return reader, nil
}

// NewSchema returns a new mcap schema.
func NewSchema(id uint16, name string, encoding string, data []byte) *mcap.Schema {
	return &mcap.Schema{
		ID:       id,
		Name:     name,
		Encoding: encoding,
		Data:     data,
	}
}

// NewChannel returns a new mcap channel.
func NewChannel(
	id uint16,
	schemaID uint16,
	topic string,
	messageEncoding string,
	metadata map[string]string,
) *mcap.Channel {
	return &mcap.Channel{
		ID:              id,
		SchemaID:        schemaID,
		Topic:           topic,
		MessageEncoding: messageEncoding,
		Metadata:        metadata,
	}
}
