package main

import "github.com/grinzing/jukei-line-yesterday/cmd"

func main() {
	cmd.Execute()
}
