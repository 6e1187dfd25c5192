package main

import "github.com/kamal-hamza/mq-cli/cmd"

func main() {
	cmd.Execute()
}
