package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/treeparse/internal/config"
	"github.com/aledsdavies/treeparse/pkgs/lexer"
	"github.com/aledsdavies/treeparse/pkgs/parser"
	"github.com/aledsdavies/treeparse/pkgs/render"
	"github.com/aledsdavies/treeparse/pkgs/tree"
	"github.com/aledsdavies/treeparse/pkgs/view"
)

// Build-time variables - can be set via ldflags
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitSyntaxError = 2
)

// options holds the command line flags
type options struct {
	configFile  string
	format      string
	title       string
	output      string
	view        bool
	debug       bool
	telemetry   bool
	fingerprint bool
	noColor     bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and maps its error to an exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var syntaxErr *parser.SyntaxError
		if errors.As(err, &syntaxErr) {
			return exitSyntaxError
		}
		return exitError
	}
	return exitOK
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "treeparse [file]",
		Short: "Parse statement programs and print their parse tree",
		Long: `treeparse reads a program in the small statement language (assignment, read,
write, if/then/else/fi, while/do/od and do/until) and prints its LL(1) parse
tree. With no file, or "-", the program is read from standard input.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return parseCommand(cmd, args, opts)
		},
	}

	tokensCmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tokensCommand(cmd, args)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version, build time, and git commit information for treeparse.",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "treeparse %s\n", Version)
			fmt.Fprintf(out, "Built: %s\n", BuildTime)
			fmt.Fprintf(out, "Commit: %s\n", GitCommit)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a TOML or YAML config file")
	flags.StringVarP(&opts.format, "format", "F", "", "Output format: text, dot, json or cbor")
	flags.StringVar(&opts.title, "title", "", "Title of the parse tree")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the tree to this file instead of stdout")
	flags.BoolVar(&opts.view, "view", false, "Open the tree in an interactive viewer")
	flags.BoolVar(&opts.telemetry, "telemetry", false, "Print token and node counts")
	flags.BoolVar(&opts.fingerprint, "fingerprint", false, "Print the structural fingerprint of the tree")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

// settings merges the config file with flags that were set explicitly
func settings(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		loaded, err := config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("title") {
		cfg.Title = opts.title
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("view") {
		cfg.View = opts.view
	}
	if flags.Changed("telemetry") {
		cfg.Telemetry = opts.telemetry
	}
	if opts.noColor {
		cfg.Color = false
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func parseCommand(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := settings(cmd, opts)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Level())

	name, source, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	logger.Debug("parsing", slog.String("source", name), slog.Int("bytes", len(source)))

	// Parse
	builder := tree.NewBuilder()
	var sink tree.Sink = builder
	parserOpts := []parser.ParserOpt{
		parser.WithTitle(cfg.Title),
		parser.WithLogger(logger),
	}
	if cfg.Telemetry {
		parserOpts = append(parserOpts, parser.WithTelemetry())
	}
	if opts.debug {
		sink = tree.NewTee(builder, tree.NewLogSink(logger))
		parserOpts = append(parserOpts, parser.WithTrace())
	}

	src := lexer.NewSource(string(source), lexer.WithLogger(logger))
	result := parser.Analyze(src, sink, parserOpts...)
	parsed := builder.Tree()

	// Report
	stderr := cmd.ErrOrStderr()
	if t := result.Telemetry; t != nil {
		fmt.Fprintf(stderr, "tokens: %d, nodes: %d, time: %s\n", t.TokenCount, t.NodeCount, t.ParseTime)
	}
	if opts.fingerprint {
		fmt.Fprintf(stderr, "fingerprint: %s\n", parsed.FingerprintHex())
	}

	if cfg.View {
		if err := showTree(cmd, parsed, cfg); err != nil {
			return err
		}
	} else if err := writeTree(cmd, parsed, format, cfg); err != nil {
		return err
	}

	if err := result.Error(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func writeTree(cmd *cobra.Command, parsed *tree.Tree, format render.Format, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("error creating output file %s: %w", cfg.Output, err)
		}
		defer f.Close()
		out = f
	}

	if err := render.Render(out, parsed, format, render.WithColor(cfg.Color)); err != nil {
		return fmt.Errorf("error rendering %s output: %w", format, err)
	}
	return nil
}

func showTree(cmd *cobra.Command, parsed *tree.Tree, cfg *config.Config) error {
	r, err := render.New(render.FormatText, render.WithColor(cfg.Color), render.WithTerminal(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	var content strings.Builder
	if err := r.Render(&content, parsed); err != nil {
		return err
	}
	return view.Run(cmd.Context(), parsed.Title, content.String(), !parsed.Ok())
}

func tokensCommand(cmd *cobra.Command, args []string) error {
	_, source, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tTYPE\tLEXEME")
	for _, tok := range lexer.NewLexer(string(source)).GetTokens() {
		fmt.Fprintf(tw, "%s\t%s\t%q\n", tok.Position, tok.Type, tok.Text)
	}
	return tw.Flush()
}

// readSource returns the program named by args, or stdin when there is none
func readSource(cmd *cobra.Command, args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("error reading input: %w", err)
		}
		return "<stdin>", content, nil
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("error reading file %s: %w", args[0], err)
	}
	return filepath.Base(args[0]), content, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
