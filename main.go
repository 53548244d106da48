package main

import "chisel/cmd"

func main() {
	cmd.Execute()
}
