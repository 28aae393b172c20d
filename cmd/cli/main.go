// Command cli is the heap-analysis command line tool.
package main

import "github.com/heap-analysis/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
