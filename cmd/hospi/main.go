package main

import "github.com/pfrederiksen/hospi-calendar/internal/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
