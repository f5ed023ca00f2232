package main

import "github.com/pcoutinho/legal-management/cmd"

func main() {
	cmd.Execute()
}
