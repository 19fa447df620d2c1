package main

import "github.com/shroominic/cashu-mint-status-board/internal/cli"

func main() {
	cli.Execute()
}
