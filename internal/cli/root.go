// Package cli provides the xaml command. Configuration is read from flags, XAML_ environment variables and
// a .xaml.yaml file, in that order of precedence.
//
// Environment Variables:
//
//	XAML_CONFIG_FILE: path to a custom configuration file
//	XAML_DOC_TYPE: doc type of pages without !!! line
//	XAML_LOG_LEVEL, XAML_LOG_FORMAT: logger settings
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xaml-go/xaml"
	"github.com/xaml-go/xaml/internal/logging"
	"github.com/xaml-go/xaml/xml"
)

// Config is the configuration shared by all commands.
type Config struct {
	DocType     string            `mapstructure:"doc-type"`
	Encoding    string            `mapstructure:"encoding"`
	SourceOrder bool              `mapstructure:"source-order"`
	Indent      string            `mapstructure:"indent"`
	Vars        map[string]string `mapstructure:"vars"`
	LogLevel    string            `mapstructure:"log-level"`
	LogFormat   string            `mapstructure:"log-format"`
}

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     Config
	logger  *slog.Logger
}

// NewRootCmd returns the xaml command with its subcommands.
func NewRootCmd() *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: logging.Discard(),
	}
	cmd := &cobra.Command{
		Use:   "xaml",
		Short: "Tokenize, parse and render Xaml documents",
		Long: `xaml reads documents written in Xaml, an indentation based markup language, and writes
them as XML or HTML.

Examples:
  xaml tokens page.xaml           Print the tokens of a document
  xaml tree page.xaml             Print the parsed tree as YAML
  xaml render page.xaml -o out    Render all pages of a document
  xaml watch templates/           Render documents whenever they change`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is .xaml.yaml, can also use XAML_CONFIG_FILE env var)")
	flags.String("doc-type", "", "doc type of pages without !!! line (xml, xsl, html)")
	flags.String("encoding", "", "output encoding, declared in the XML declaration or the HTML head")
	flags.Bool("source-order", false, "write attributes in source order")
	flags.String("indent", "", "indentation of nested elements (default four spaces)")
	flags.StringToString("var", nil, "template variable name=value, repeatable")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	for _, name := range []string{"doc-type", "encoding", "source-order", "indent", "log-level", "log-format"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	_ = a.v.BindPFlag("vars", flags.Lookup("var"))

	cmd.AddCommand(
		newTokensCmd(a),
		newTreeCmd(a),
		newRenderCmd(a),
		newWatchCmd(a),
	)
	cmd.SetGlobalNormalizationFunc(normalizeFlag)
	return cmd
}

// normalizeFlag accepts --doc_type for --doc-type.
func normalizeFlag(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute runs the xaml command and returns its exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (a *app) init(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if env := os.Getenv("XAML_CONFIG_FILE"); env != "" {
		a.v.SetConfigFile(env)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".xaml")
	}
	a.v.SetEnvPrefix("XAML")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read configuration: %w", err)
		}
	}
	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.cfg.DocType != "" {
		if _, ok := xaml.ResolveVersion(a.cfg.DocType, ""); !ok {
			return fmt.Errorf("unknown doc type %q", a.cfg.DocType)
		}
	}

	logger, err := logging.New(logging.Config{
		Level:  a.cfg.LogLevel,
		Format: a.cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	if file := a.v.ConfigFileUsed(); file != "" {
		a.logger.Debug("configuration loaded", "file", file)
	}
	return nil
}

func (a *app) parseOptions() []xaml.Option {
	if a.cfg.DocType == "" {
		return nil
	}
	return []xaml.Option{xaml.WithDocType(a.cfg.DocType)}
}

func (a *app) renderOptions() xml.Options {
	vars := make(map[string]interface{}, len(a.cfg.Vars))
	for k, v := range a.cfg.Vars {
		vars[k] = v
	}
	return xml.Options{
		Encoding:    a.cfg.Encoding,
		Vars:        vars,
		SourceOrder: a.cfg.SourceOrder,
		Indent:      a.cfg.Indent,
	}
}

// readLines reads and decodes a file, - is standard input.
func (a *app) readLines(cmd *cobra.Command, path string) ([]string, error) {
	var b []byte
	var err error
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	s, err := xaml.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return xaml.SplitLines(s), nil
}

func (a *app) parseFile(cmd *cobra.Command, path string) (*xaml.Document, error) {
	lines, err := a.readLines(cmd, path)
	if err != nil {
		return nil, err
	}
	doc, err := xaml.Parse(lines, a.parseOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.logger.Debug("parsed document", "file", path, "lines", len(lines), "pages", len(doc.Pages))
	return doc, nil
}
