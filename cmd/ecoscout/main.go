package main

import "github.com/vietddude/ecoscout/internal/cli"

func main() {
	cli.Execute()
}
