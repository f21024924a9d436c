package main

import (
	"github.com/foomo/gitpages/cmd"
)

func main() {
	cmd.Execute()
}
