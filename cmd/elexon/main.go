package main

import (
	"os"

	"elexon/internal/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
