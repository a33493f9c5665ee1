package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xaml-go/xaml"
	"gopkg.in/yaml.v3"
)

type tokenDump struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name,omitempty"`
	Value    string `yaml:"value,omitempty"`
	MakeSafe bool   `yaml:"make_safe,omitempty"`
	Inline   bool   `yaml:"inline,omitempty"`
}

func newTokensCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the tokens of a Xaml document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.readLines(cmd, args[0])
			if err != nil {
				return err
			}
			tokens, err := xaml.NewTokenizer(lines, a.parseOptions()...).Tokens()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			a.logger.Debug("tokenized document", "file", args[0], "tokens", len(tokens))
			return writeTokens(cmd.OutOrStdout(), tokens, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, yaml)")
	return cmd
}

func writeTokens(w io.Writer, tokens []xaml.Token, format string) error {
	switch format {
	case "text":
		for _, tok := range tokens {
			if _, err := fmt.Fprintln(w, tok); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		dump := make([]tokenDump, 0, len(tokens))
		for _, tok := range tokens {
			dump = append(dump, tokenDump{
				Type:     tok.TokenType.String(),
				Name:     tok.Name,
				Value:    tok.Value,
				MakeSafe: tok.MakeSafe,
				Inline:   tok.Inline,
			})
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(dump); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
