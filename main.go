package main

import "github.com/notargets/goensight/cmd"

func main() {
	cmd.Execute()
}
