// Package main provides the costbook CLI.
package main

import "github.com/mesh-intelligence/costbook/internal/cli"

func main() {
	cli.Execute()
}
