package main

import "github.com/relaycore/groupcast/cmd"

func main() {
	cmd.Execute()
}
