package main

import "vsix-sync/internal/cli"

func main() {
	cli.Execute()
}
