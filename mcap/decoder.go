package mcap

import (
	"context"
	"fmt"

	fmcap "github.com/foxglove/mcap/go/mcap"
	"github.com/spaolacci/murmur3"
	"github.com/wkalt/ros2dyn/cdr"
	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/util/log"
	"github.com/wkalt/ros2dyn/util/ros2msg"
	"github.com/wkalt/ros2dyn/util/schema"
	"github.com/wkalt/ros2dyn/util/value"
)

/*
The message decoder turns MCAP message records into dynamic values. Schema
records are parsed and resolved once. Recordings often repeat an identical
schema under several schema IDs, for instance after merging files, so
decoders are shared between schema records with equal content.
*/

////////////////////////////////////////////////////////////////////////////////

// Message is a decoded MCAP message.
type Message struct {
	Topic       string
	Schema      schema.MessageIdentifier
	Sequence    uint32
	LogTime     uint64
	PublishTime uint64
	Value       value.Value
}

type schemaDecoder struct {
	graph   *resolver.Graph
	decoder *cdr.Decoder
}

// MessageDecoder decodes messages from ros2msg/cdr channels. It is not safe
// for concurrent use.
type MessageDecoder struct {
	config     *config
	bySchemaID map[uint16]*schemaDecoder
	byHash     map[uint64]*schemaDecoder
}

// NewMessageDecoder returns a new message decoder.
func NewMessageDecoder(opts ...Option) *MessageDecoder {
	return &MessageDecoder{
		config:     buildConfig(opts),
		bySchemaID: make(map[uint16]*schemaDecoder),
		byHash:     make(map[uint64]*schemaDecoder),
	}
}

func hashSchema(s *fmcap.Schema) uint64 {
	h := murmur3.New64()
	_, _ = h.Write([]byte(s.Name))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(s.Encoding))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(s.Data)
	return h.Sum64()
}

// Graph returns the resolved dependency graph of a schema record.
func (d *MessageDecoder) Graph(ctx context.Context, s *fmcap.Schema) (*resolver.Graph, error) {
	sd, err := d.schemaDecoder(ctx, s)
	if err != nil {
		return nil, err
	}
	return sd.graph, nil
}

func (d *MessageDecoder) schemaDecoder(ctx context.Context, s *fmcap.Schema) (*schemaDecoder, error) {
	if sd, ok := d.bySchemaID[s.ID]; ok {
		return sd, nil
	}
	hash := hashSchema(s)
	if sd, ok := d.byHash[hash]; ok {
		d.bySchemaID[s.ID] = sd
		return sd, nil
	}
	if s.Encoding != SchemaEncodingROS2Msg {
		return nil, UnsupportedEncodingError{Topic: s.Name, Encoding: s.Encoding}
	}
	id, err := schema.ParseIdentifier(s.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema name: %w", err)
	}
	root, bundle, err := ros2msg.ParseBundle(id, s.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Name, err)
	}
	var registry resolver.Registry = bundle
	if d.config.registry != nil {
		registry = resolver.Chain(bundle, d.config.registry)
	}
	graph, err := resolver.Resolve(root, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", s.Name, err)
	}
	decoder, err := cdr.NewDecoder(graph, id, d.config.cdrOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder for %s: %w", s.Name, err)
	}
	if d.config.onGraph != nil {
		if err := d.config.onGraph(graph); err != nil {
			return nil, fmt.Errorf("graph callback failed for %s: %w", s.Name, err)
		}
	}
	sd := &schemaDecoder{graph: graph, decoder: decoder}
	d.bySchemaID[s.ID] = sd
	d.byHash[hash] = sd
	log.Debugw(ctx, "resolved schema", "schema", s.Name, "dependencies", len(graph.Order))
	return sd, nil
}

// Decode decodes a message record.
func (d *MessageDecoder) Decode(
	ctx context.Context,
	s *fmcap.Schema,
	c *fmcap.Channel,
	m *fmcap.Message,
) (*Message, error) {
	if s == nil {
		return nil, SchemalessChannelError{Topic: c.Topic}
	}
	if c.MessageEncoding != MessageEncodingCDR {
		return nil, UnsupportedEncodingError{Topic: c.Topic, Encoding: c.MessageEncoding}
	}
	sd, err := d.schemaDecoder(ctx, s)
	if err != nil {
		return nil, err
	}
	v, err := sd.decoder.Decode(m.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s message on %s: %w", s.Name, c.Topic, err)
	}
	return &Message{
		Topic:       c.Topic,
		Schema:      sd.graph.Root.ID,
		Sequence:    m.Sequence,
		LogTime:     m.LogTime,
		PublishTime: m.PublishTime,
		Value:       v,
	}, nil
}
