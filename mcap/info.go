package mcap

import (
	"fmt"
	"io"
	"sort"
)

// Topic summarizes one channel of an indexed MCAP file.
type Topic struct {
	Topic           string
	Schema          string
	SchemaEncoding  string
	MessageEncoding string
	MessageCount    uint64
}

// Summary describes the channels and message time span of an MCAP file.
// Start and End are the log times of the first and last message.
type Summary struct {
	Topics []Topic
	Start  uint64
	End    uint64
}

// Summarize reads the summary section of an MCAP file. Topics are sorted by
// topic name.
func Summarize(rs io.ReadSeeker) (*Summary, error) {
	reader, err := NewReader(rs)
	if err != nil {
		return nil, err
	}
	info, err := reader.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	topics := make([]Topic, 0, len(info.Channels))
	for id, channel := range info.Channels {
		topic := Topic{
			Topic:           channel.Topic,
			MessageEncoding: channel.MessageEncoding,
		}
		if s, ok := info.Schemas[channel.SchemaID]; ok && s != nil {
			topic.Schema = s.Name
			topic.SchemaEncoding = s.Encoding
		}
		if info.Statistics != nil {
			topic.MessageCount = info.Statistics.ChannelMessageCounts[id]
		}
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].Topic < topics[j].Topic
	})
	summary := &Summary{Topics: topics}
	if info.Statistics != nil {
		summary.Start = info.Statistics.MessageStartTime
		summary.End = info.Statistics.MessageEndTime
	}
	return summary, nil
}
