// ABOUTME: Entry point for the vm-allocator CLI and API server
// ABOUTME: Sizes VM fleets for CPU-bound workloads locally or over HTTP

package main

import (
	"fmt"
	"os"

	"github.com/markalston/vm-allocator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
