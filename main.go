package main

import "github.com/adamgarcia4/goLearning/glomers/cmd"

func main() {
	cmd.Execute()
}
