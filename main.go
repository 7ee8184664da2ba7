package main

import "github.com/Bitlatte/redefine/cmd"

func main() {
	cmd.Execute()
}
