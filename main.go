package main

import "github.com/frahmantamala/missiontime/cmd"

func main() {
	cmd.Execute()
}
