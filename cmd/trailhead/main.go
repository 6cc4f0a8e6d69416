// Command trailhead serves the face-search app shell and its navigation API.
package main

import (
	"log"

	"github.com/xy-planning-network/trailhead/ranger"
)

func main() {
	rng, err := ranger.New()
	if err != nil {
		log.Fatalf("could not start: %s", err)
	}

	if err := rng.Guide(); err != nil {
		rng.EmitLogger().Fatal(err.Error(), nil)
	}
}
