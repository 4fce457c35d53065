// Package main is the entry point for the testgate CLI.
package main

import "testgate.dev/pkg/testgate/cmd"

func main() {
	cmd.Execute()
}
