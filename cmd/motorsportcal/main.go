package main

import "motorsportcal/internal/cmd"

func main() {
	cmd.Execute()
}
