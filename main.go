package main

import "github.com/user/barky/cmd"

func main() {
	cmd.Execute()
}
