// Package main is the entry point for the SecondBrain document chat service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/secondbrain-io/secondbrain/internal/secondbrain"
)

func main() {
	secondbrain.NewApp().Run()
}
