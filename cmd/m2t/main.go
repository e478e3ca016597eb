package main

import (
	"media2text/cmd/m2t/cmd"
)

func main() {
	cmd.Execute()
}
