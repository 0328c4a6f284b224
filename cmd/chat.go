package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kosmatov/palbot/llm"
	"github.com/kosmatov/palbot/persona"
)

func init() {
	ChatCMD.Flags().String("p_name", "openai", "provider's name")
	ChatCMD.Flags().String("p_model", "gpt-4o-mini", "base model to use")
	ChatCMD.Flags().String("p_key", "", "provider's api key")
	ChatCMD.Flags().String("p_addr", "", "provider's endpoint")
}

// ChatCMD is a stdin REPL against the configured provider, handy for
// trying out prompt wording without a running bot.
var ChatCMD = cobra.Command{
	Use:  "chat",
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("p_name")
		model, _ := cmd.Flags().GetString("p_model")
		key, _ := cmd.Flags().GetString("p_key")
		endpoint, _ := cmd.Flags().GetString("p_addr")

		ai, err := llm.New(cmd.Context(), name, model, key, endpoint)
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Split(bufio.ScanLines)
		for scanner.Scan() {
			input := scanner.Text()
			if input == "/exit" {
				return nil
			}
			fmt.Printf("\n")

			text, err := ai.Generate(cmd.Context(), persona.System, input)
			if err != nil {
				fmt.Printf(">error: %s \n", err)
				return nil
			}
			fmt.Printf(">model: %s \n\n", text)
		}
		return scanner.Err()
	},
}
