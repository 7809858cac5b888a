package ros2msg

import (
	"fmt"
	"strings"

	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/util/schema"
)

/*
Concatenated definitions are the form in which ROS2 schemas are embedded in
MCAP and rosbag2 files: the root definition, followed by each dependency in a
section introduced by a line of '=' characters and a "MSG: pkg/Name" header.

	string name
	geometry_msgs/Point position
	================================================================================
	MSG: geometry_msgs/Point
	float64 x
	float64 y
	float64 z

This is the format produced by resolver.Graph.CanonicalText. Section bodies
are kept byte for byte; the newline preceding each separator line belongs to
the separator.
*/

////////////////////////////////////////////////////////////////////////////////

// ParseBundle parses a concatenated definition. It returns the root schema,
// named id, and a registry holding each dependency section. If a dependency
// appears more than once the first definition wins.
func ParseBundle(id schema.MessageIdentifier, data []byte) (*schema.Schema, *resolver.MapRegistry, error) {
	lines := strings.Split(string(data), "\n")
	sections := [][]string{}
	offsets := []int{}
	start := 0
	for i, line := range lines {
		if isSectionSeparator(line) {
			sections = append(sections, lines[start:i])
			offsets = append(offsets, start)
			start = i + 1
		}
	}
	sections = append(sections, lines[start:])
	offsets = append(offsets, start)

	root, err := parseMessage(id, strings.Join(sections[0], "\n"), 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", id, err)
	}
	registry := resolver.NewMapRegistry()
	for i := 1; i < len(sections); i++ {
		section := sections[i]
		headerIdx := -1
		for j, line := range section {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			headerIdx = j
			break
		}
		if headerIdx < 0 {
			continue
		}
		lineno := offsets[i] + headerIdx + 1
		header, err := HeaderParser.ParseString("", section[headerIdx])
		if err != nil {
			return nil, nil, SyntaxError{Line: lineno, Msg: fmt.Sprintf("invalid section header: %s", err)}
		}
		depID, err := schema.ParseIdentifier(header.Type)
		if err != nil {
			return nil, nil, SyntaxError{Line: lineno, Msg: err.Error()}
		}
		if registry.Contains(depID) {
			continue
		}
		body := strings.Join(section[headerIdx+1:], "\n")
		dep, err := parseMessage(depID, body, lineno)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse %s: %w", depID, err)
		}
		registry.Add(dep)
	}
	return root, registry, nil
}

func isSectionSeparator(line string) bool {
	line = strings.TrimSpace(line)
	return line != "" && strings.Trim(line, "=") == ""
}
