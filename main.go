package main

import "jbuild/cmd"

func main() {
	cmd.Execute()
}
