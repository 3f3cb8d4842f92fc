package main

import "github.com/textailor/textailor/cmd"

func main() {
	cmd.Execute()
}
