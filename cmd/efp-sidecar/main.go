package main

import "github.com/ethereumfollowprotocol/efp-sidecar/cmd"

func main() {
	cmd.Execute()
}
