package main

import (
	"fmt"
	"os"

	"github.com/inkframe/inkframe/cmd"
)

var (
	version = "dev"
	commit  string
	date    string
)

func main() {
	err := cmd.Execute(os.Args, cmd.BuildArgs{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	if err != nil {
		fmt.Printf("inkframe: %s\n", err.Error())
		os.Exit(1)
	}
}
