package main

import "github.com/theirongolddev/pnlcast/cmd"

func main() {
	cmd.Execute()
}
