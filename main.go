package main

import (
	"flag"

	"github.com/keydeck/keydeck/cmd/keydeck"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config file; env vars are used when empty")
	flag.Parse()

	keydeck.Run(*configPath)
}
