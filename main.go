package main

import "github.com/Jezza/wuxia-dl/cmd"

func main() {
	cmd.Execute()
}
