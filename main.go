// Idiomatic entrypoint for the Cobra CLI that delegates handling to the Cobra root command in cmd/root.go

package main

import (
	"github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/cmd"
)

func main() {
	cmd.Execute()
}
