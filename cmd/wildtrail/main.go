// Package main is the single-binary entrypoint for wildtrail.
package main

import "github.com/wildtrail/wildtrail/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
