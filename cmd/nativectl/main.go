// Command nativectl calls the native exports from the command line, either
// in process, through the JSON host function channel, or inside a compiled
// plugin.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
