package main

import "github.com/clipforge/clipforge-agent/internal/cli"

func main() {
	cli.Execute()
}
