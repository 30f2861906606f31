/*
Copyright © 2026 lpakula
*/
package main

import "github.com/lpakula/agent-moderails/cmd"

func main() {
	cmd.Execute()
}
