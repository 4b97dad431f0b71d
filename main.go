package main

import (
	"os"

	"utsc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
