package main

import "livelist/cmd"

func main() {
	cmd.Execute()
}
