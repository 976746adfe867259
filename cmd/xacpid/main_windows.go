//go:build windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "xacpid: Unix domain sockets with peer credentials are not supported on Windows")
	os.Exit(1)
}
