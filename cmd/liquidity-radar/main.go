package main

import (
	"liquidity-radar/internal/cli"
)

func main() {
	cli.Execute()
}
