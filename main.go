// Command memhier replays and stress-tests a two-level cache hierarchy.
package main

import "github.com/sarchlab/memhier/cmd"

func main() {
	cmd.Execute()
}
