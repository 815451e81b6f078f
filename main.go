// Package main provides the entry point for cachesim.
// cachesim is a trace-driven set-associative cache simulator.
//
// For the full CLI, use: go run ./cmd/cachesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("cachesim - Trace-Driven Cache Simulator")
	fmt.Println("")
	fmt.Println("Usage: cachesim infile <options>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -l1-usize    Total cache size in bytes")
	fmt.Println("  -l1-ubsize   Block size in bytes")
	fmt.Println("  -l1-uassoc   Associativity")
	fmt.Println("  -l1-urepl    Replacement policy, 'l' LRU or 'f' FIFO")
	fmt.Println("  -l1-uwalloc  Write allocation, 'a' always or 'n' never")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/cachesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/cachesim' instead.")
	}
}
