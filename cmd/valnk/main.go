package main

import "github.com/jacentio/valnk/internal/cli"

func main() {
	cli.Execute()
}
