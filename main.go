package main

import "github.com/sitegauge/sitegauge/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
