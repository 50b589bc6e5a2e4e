package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askContextOnly bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askContextOnly, "context-only", false, "print the retrieved context without calling the completion provider")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	if askContextOnly {
		rc, err := clients.RAG.Search(cmdContext, question)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if outputJSON {
			return printJSON(cmd, rc)
		}
		if rc.Empty {
			cmd.Println("No results found.")
			return nil
		}
		cmd.Println(rc.Text)
		printSources(cmd, rc.Sources)
		return nil
	}

	answer, err := clients.RAG.Answer(cmdContext, question)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}
	if outputJSON {
		return printJSON(cmd, answer)
	}
	cmd.Println(answer.Answer)
	printSources(cmd, answer.Sources)
	return nil
}

func printSources(cmd *cobra.Command, sources []string) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, s := range sources {
		cmd.Printf("  - %s\n", s)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
