package main

import "papertok/internal/cli"

func main() {
	cli.Execute()
}
