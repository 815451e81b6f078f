// Package main provides the command-line interface of the cache simulator.
//
// Usage:
//
//	cachesim <trace> [-l1-usize n] [-l1-ubsize n] [-l1-uassoc n] [-l1-urepl l|f] [-l1-uwalloc a|n]
//	cachesim compare <trace> [options]
//	cachesim sweep <trace> [flags]
//	cachesim gen <workload> [flags]
package main

func main() {
	Execute()
}
