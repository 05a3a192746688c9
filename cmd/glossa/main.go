// Command glossa tokenizes files with longest-match pattern tries.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
