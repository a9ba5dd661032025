package main

import "github.com/cj3636/gitdiffview/internal/cli"

func main() {
	cli.Execute()
}
