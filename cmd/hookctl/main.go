// Command hookctl runs the hooks an AI coding assistant invokes around tool
// calls and installs them into the assistant's configuration.
package main

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	Execute()
}
