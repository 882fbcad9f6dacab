package main

import "github.com/lukman83/phonescope/cmd"

func main() {
	cmd.Execute()
}
