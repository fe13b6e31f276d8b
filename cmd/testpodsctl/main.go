package main

import "github.com/testpods-go/testpods/cmd/testpodsctl/cmd"

func main() {
	cmd.Execute()
}
