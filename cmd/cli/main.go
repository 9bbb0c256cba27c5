package main

import "portalhub/cmd/cli/command"

func main() {
	command.Execute()
}
