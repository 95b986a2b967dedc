package main

import "point-record/cmd"

func main() {
	cmd.Execute()
}
