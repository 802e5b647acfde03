package main

import "depsentry/internal/cli"

func main() {
	cli.Execute()
}
