package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/sqlverify/internal/parser"
)

const subcommandHelp = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}`

// newParseCmd builds the parse subcommand: it reads a raw model response
// from a file or stdin and prints the parsed record as JSON.
func newParseCmd() *cobra.Command {
	var shape string
	cmd := &cobra.Command{
		Use:   "parse --shape <name> [file]",
		Short: "Parse a raw model response into a structured record",
		Long: "Parse a raw model response, read from file or stdin, and print the record as JSON.\n\n" +
			"Shapes: " + strings.Join(parser.ShapeNames(), ", "),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			v, err := parser.Parse(raw, parser.Shape(shape))
			if err != nil {
				if kind := parser.KindName(err); kind != "" {
					return fmt.Errorf("%s: %w", kind, err)
				}
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "", "Response shape: "+strings.Join(parser.ShapeNames(), ", "))
	_ = cmd.MarkFlagRequired("shape")
	cmd.SetHelpTemplate(subcommandHelp)
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
