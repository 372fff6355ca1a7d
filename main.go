package main

import "github.com/hirelink/hirelink_backend/cmd"

func main() {
	cmd.Execute()
}
