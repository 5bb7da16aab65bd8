package main

import (
	_ "go.uber.org/automaxprocs"
	"venue-booking/cmd"
)

func main() {
	cmd.Start()
}
