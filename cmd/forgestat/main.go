// main is the entry point for the forgestat CLI.
package main

import (
	"fmt"
	"os"

	"github.com/forgeworks/forgestat/cmd"
	"github.com/forgeworks/forgestat/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
