package main

import "github.com/Go-routine-4595/faultzero-sim/cmd"

func main() {
	cmd.Execute()
}
