// Command rolodex manages contacts held by a remote contact API.
package main

import "github.com/mesh-intelligence/rolodex/internal/cli"

func main() {
	cli.Execute()
}
