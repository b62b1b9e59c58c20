// Command fureal is a terminal client for the Fureal support assistant.
package main

import "github.com/fureal/fureal/internal/commands"

func main() {
	commands.Execute()
}
