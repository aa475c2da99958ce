package main

import "purchase-manager/cmd"

func main() {
	cmd.Execute()
}
