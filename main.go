package main

import (
	"github.com/mj1618/focusguard/cmd"

	_ "github.com/mj1618/focusguard/internal/platform/x11"
)

func main() {
	cmd.Execute()
}
