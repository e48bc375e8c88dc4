package main

import "github.com/marshallshelly/airline/cmd/airline/commands"

func main() {
	commands.Execute()
}
