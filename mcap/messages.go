package mcap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	fmcap "github.com/foxglove/mcap/go/mcap"
	"github.com/goccy/go-json"
	"github.com/wkalt/ros2dyn/util"
	"github.com/wkalt/ros2dyn/util/log"
)

////////////////////////////////////////////////////////////////////////////////

// ReadMessages decodes the messages of an MCAP stream in file order, calling
// f for each one that passes the configured topic and time filters. The
// message passed to f is not retained.
func ReadMessages(ctx context.Context, r io.Reader, f func(*Message) error, opts ...Option) error {
	reader, err := NewReader(r)
	if err != nil {
		return err
	}
	it, err := reader.Messages(fmcap.UsingIndex(false), fmcap.InOrder(fmcap.FileOrder))
	if err != nil {
		return fmt.Errorf("failed to read messages: %w", err)
	}
	decoder := NewMessageDecoder(opts...)
	cfg := decoder.config
	skipped := make(map[string]int)
	var buf []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, c, m, err := it.Next(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read next message: %w", err)
		}
		buf = m.Data
		if cfg.topics != nil && !cfg.topics[c.Topic] {
			continue
		}
		if m.LogTime < cfg.start || (cfg.end > 0 && m.LogTime >= cfg.end) {
			continue
		}
		msg, err := decoder.Decode(ctx, s, c, m)
		if err != nil {
			if !cfg.skipErrors {
				return err
			}
			if skipped[c.Topic] == 0 {
				log.Warnw(ctx, "skipping undecodable messages", "topic", c.Topic, "error", err)
			}
			skipped[c.Topic]++
			continue
		}
		if err := f(msg); err != nil {
			return err
		}
	}
	for _, topic := range util.Okeys(skipped) {
		log.Infow(ctx, "skipped messages", "topic", topic, "count", skipped[topic])
	}
	return nil
}

func digits(n uint64) int {
	if n == 0 {
		return 1
	}
	count := 0
	for n != 0 {
		n /= 10
		count++
	}
	return count
}

func appendDecimalTime(buf []byte, t uint64) []byte {
	seconds := t / 1e9
	nanoseconds := t % 1e9
	buf = strconv.AppendUint(buf, seconds, 10)
	buf = append(buf, '.')
	for i := 0; i < 9-digits(nanoseconds); i++ {
		buf = append(buf, '0')
	}
	return strconv.AppendUint(buf, nanoseconds, 10)
}

// AppendJSON appends the JSON line form of a message to buf.
func (m *Message) AppendJSON(buf []byte) ([]byte, error) {
	topic, err := json.Marshal(m.Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to encode topic: %w", err)
	}
	buf = append(buf, `{"topic":`...)
	buf = append(buf, topic...)
	buf = append(buf, `,"schema":"`...)
	buf = append(buf, m.Schema.String()...)
	buf = append(buf, `","sequence":`...)
	buf = strconv.AppendUint(buf, uint64(m.Sequence), 10)
	buf = append(buf, `,"log_time":`...)
	buf = appendDecimalTime(buf, m.LogTime)
	buf = append(buf, `,"publish_time":`...)
	buf = appendDecimalTime(buf, m.PublishTime)
	buf = append(buf, `,"data":`...)
	buf, err = m.Value.AppendJSON(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode data: %w", err)
	}
	return append(buf, "}\n"...), nil
}

// MCAPToJSON writes the decoded messages of an MCAP stream to w as JSON
// lines.
func MCAPToJSON(ctx context.Context, w io.Writer, r io.Reader, opts ...Option) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	count := 0
	err := ReadMessages(ctx, bufio.NewReader(r), func(m *Message) error {
		var err error
		buf, err = m.AppendJSON(buf[:0])
		if err != nil {
			return err
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
		count++
		return nil
	}, opts...)
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	log.Debugw(ctx, "wrote messages", "count", count)
	return nil
}
