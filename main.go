package main

import "github.com/pders01/scene-state/cmd"

func main() {
	cmd.Execute()
}
