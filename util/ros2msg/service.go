package ros2msg

import (
	"strings"

	"github.com/wkalt/ros2dyn/util/schema"
)

////////////////////////////////////////////////////////////////////////////////

// ParseService parses a ROS2 .srv definition. The text before the "---" line
// is the request and the text after it the response, named <name>_Request
// and <name>_Response. Line numbers in errors refer to the full service text.
func ParseService(pkg string, name string, srvdef []byte) (*schema.Service, error) {
	id := schema.NewIdentifier(pkg, name)
	text := string(srvdef)
	lines := strings.Split(text, "\n")
	sep := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "---" {
			continue
		}
		if sep >= 0 {
			return nil, SyntaxError{Line: i + 1, Msg: "unexpected second --- separator"}
		}
		sep = i
	}
	if sep < 0 {
		return nil, MissingSeparatorError{Service: id.String()}
	}
	request, err := parseMessage(schema.RequestID(id), strings.Join(lines[:sep], "\n"), 0)
	if err != nil {
		return nil, err
	}
	response, err := parseMessage(schema.ResponseID(id), strings.Join(lines[sep+1:], "\n"), sep+1)
	if err != nil {
		return nil, err
	}
	return &schema.Service{
		ID:       id,
		Request:  request,
		Response: response,
		Text:     text,
	}, nil
}
