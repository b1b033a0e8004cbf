package main

import "playlog/cmd/cli/command"

func main() {
	command.Execute()
}
