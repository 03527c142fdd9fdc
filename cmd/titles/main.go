package main

import "landed-titles/internal/cli"

func main() {
	cli.Execute()
}
