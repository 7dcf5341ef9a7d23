package main

import "github.com/example/tablebook/cmd/tablebook/cmd"

func main() {
	cmd.Execute()
}
