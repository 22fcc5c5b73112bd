package main

import "github.com/CSingh26/ReliScore/cmd/cli"

func main() {
	cli.Execute()
}
