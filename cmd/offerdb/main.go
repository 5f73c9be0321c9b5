package main

import "github.com/offerlab/offerdb/cmd/offerdb/commands"

func main() {
	commands.Execute()
}
