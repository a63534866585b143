package main

import "fbstory/cmd"

func main() {
	cmd.Execute()
}
