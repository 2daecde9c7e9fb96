package main

import "github.com/diantamela/satgas-ppk/cmd"

func main() {
	cmd.Execute()
}
