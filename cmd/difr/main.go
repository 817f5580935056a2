// cmd/difr/main.go
package main

import (
	cmd "github.com/mwiater/difr/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	setVersionInfo = cmd.SetVersionInfo
	executeCmd     = cmd.Execute
)

// main starts the difr CLI application by delegating to the cobra root
// command defined in the cli package.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
