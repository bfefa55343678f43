package main

import (
	"github.com/boulder-sim/boulder/cmd"
	"github.com/boulder-sim/boulder/pkg/env"
	"github.com/boulder-sim/boulder/pkg/log"
)

func main() {
	if err := env.Process(); err != nil {
		log.Fatal("environment failure", "error", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal("boulder failure", "error", err)
	}
}
