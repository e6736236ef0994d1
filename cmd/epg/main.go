package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/scott012/EPG-Viewer/cmd/epg/cmds"
)

func main() {
	cobra.CheckErr(cmds.NewRootCLI().ExecuteContext(context.Background()))
}
