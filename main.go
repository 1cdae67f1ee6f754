package main

import "github.com/TrickyVikram/Face-Recognition-attendance/cmd"

func main() {
	cmd.Execute()
}
