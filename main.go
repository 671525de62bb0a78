package main

import "github.com/example/englearn/cmd"

func main() {
	cmd.Execute()
}
