package main

import "github.com/longkey1/bookchat/cmd"

func main() {
	cmd.Execute()
}
