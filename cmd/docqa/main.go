package main

import "github.com/jdmorrow/docqa/internal/cli"

func main() {
	cli.Execute()
}
