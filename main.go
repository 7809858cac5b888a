package main

import "github.com/wkalt/ros2dyn/cli/cmd"

func main() {
	cmd.Execute()
}
