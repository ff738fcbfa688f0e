package main

import (
	"github.com/duelcast/duelcast/internal/cli"
)

func main() {
	cli.Execute()
}
