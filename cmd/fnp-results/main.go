package main

import (
	_ "time/tzdata"

	"github.com/larraunpilota/fnp-results/internal/cli"
)

func main() {
	cli.Execute()
}
