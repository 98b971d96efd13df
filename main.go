package main

import "api-test-generator/internal/cli"

func main() {
	cli.Execute()
}
