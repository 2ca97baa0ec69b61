package main

import "github.com/TFMV/neongraph/cmd"

func main() {
	cmd.Execute()
}
