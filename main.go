package main

import "github.com/verdevalley/concierge/cmd"

func main() {
	cmd.Execute()
}
