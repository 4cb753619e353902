package main

import "github.com/andrescamacho/hauler-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
