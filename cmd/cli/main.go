package main

import (
	"fmt"
	"os"

	"github.com/tbraden/quoteboard/cmd/cli/root"

	// Register subcommands.
	_ "github.com/tbraden/quoteboard/cmd/cli/quote"
	_ "github.com/tbraden/quoteboard/cmd/cli/users"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
