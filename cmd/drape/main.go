// drape - outfit discovery and pin styling
//
// drape searches for products, builds complete outfits around a piece you
// like and composes Pinterest-style pins from the results. It runs as a CLI
// or serves the same features over a JSON HTTP API.
package main

import "github.com/jmylchreest/drape/internal/cli"

func main() {
	cli.Execute()
}
