package main

import "trainercard/process/sanitize"

func main() {
	sanitize.Run()
}
