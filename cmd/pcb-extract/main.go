package main

import "github.com/OpenTraceLab/OpenTracePCB/cmd/pcb-extract/cmd"

func main() {
	cmd.Execute()
}
