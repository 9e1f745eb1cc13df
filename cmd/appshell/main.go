package main

import (
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.0.1-alpha"

func main() {
	os.Exit(Main(os.Args[1:], nil))
}
