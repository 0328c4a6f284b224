package main

import (
	"github.com/kosmatov/palbot/cmd"
	"github.com/spf13/cobra"
)

func main() {
	rootCMD := cobra.Command{Use: "palbot"}
	rootCMD.AddCommand(
		&cmd.BotCMD,
		&cmd.ChatCMD,
	)
	rootCMD.Execute()
}
