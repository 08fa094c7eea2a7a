package main

import "github.com/OpenTraceLab/OpenTraceCAD/cmd/otcad/cmd"

func main() {
	cmd.Execute()
}
