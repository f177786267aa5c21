package main

import "github.com/RyanBlaney/audio-features/cmd"

func main() {
	cmd.Execute()
}
