package main

import "kiosk-sync/cmd"

func main() {
	cmd.Execute()
}
