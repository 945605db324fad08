// Command csim replays a memory-access trace against a set-associative cache
// and reports hits, misses, evictions, and dirty bytes.
package main

import "github.com/sarchlab/csim/cmd/csim/cmd"

func main() {
	cmd.Execute()
}
