// cns-orchestrator reconciles a cns/{network}/... configuration store: it
// watches for capability changes, matches provider and consumer
// capabilities under the active scope mode, and keeps their connections'
// properties in sync (see SPEC_FULL.md).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cnscp/cns-orchestrator/pkg/cache"
	"github.com/cnscp/cns-orchestrator/pkg/cli"
	"github.com/cnscp/cns-orchestrator/pkg/config"
	"github.com/cnscp/cns-orchestrator/pkg/log"
	"github.com/cnscp/cns-orchestrator/pkg/orcherr"
	"github.com/cnscp/cns-orchestrator/pkg/reconciler"
	"github.com/cnscp/cns-orchestrator/pkg/store"
	"github.com/cnscp/cns-orchestrator/pkg/version"
)

// App holds the root command's flag values (§6).
type App struct {
	host        string
	port        int
	username    string
	password    string
	monochrome  bool
	silent      bool
	debug       bool
	configFile  string
	showVersion bool
}

var app = &App{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Red(err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cns-orchestrator",
	Short:         "Reconciling controller for the cns configuration store",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&app.showVersion, "version", "v", false, "Print version information and exit")
	flags.StringVarP(&app.host, "host", "H", "", "Store host (default 127.0.0.1)")
	flags.IntVarP(&app.port, "port", "P", 0, "Store port (default 2379)")
	flags.StringVarP(&app.username, "username", "u", "", "Store auth username")
	flags.StringVarP(&app.password, "password", "p", "", "Store auth password")
	flags.BoolVarP(&app.monochrome, "monochrome", "m", false, "Disable ANSI colour")
	flags.BoolVarP(&app.silent, "silent", "s", false, "Suppress non-error console output")
	flags.BoolVarP(&app.debug, "debug", "d", false, "Emit debug traces")
	flags.StringVar(&app.configFile, "config", "", "Optional YAML config file overlay")

	rootCmd.SetFlagErrorFunc(flagErrorFunc)
}

// flagErrorFunc translates pflag's parse errors into the CLI's exact
// "Illegal option: <arg>" / "Missing argument: <arg>" wording (§6).
func flagErrorFunc(cmd *cobra.Command, err error) error {
	msg := err.Error()
	token := lastToken(msg)
	if strings.Contains(msg, "flag needs an argument") {
		return orcherr.MissingArgument(token)
	}
	return orcherr.IllegalOption(token)
}

// lastToken extracts the offending flag text from a pflag error message,
// which ends in ": <flag>" for long flags and in ": '<c>' in -<flags>" for
// shorthand flags; in the latter case the "-<flags>" argument is returned.
func lastToken(msg string) string {
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		msg = strings.TrimSpace(msg[idx+2:])
	}
	if idx := strings.LastIndex(msg, " in "); idx >= 0 {
		return strings.TrimSpace(msg[idx+4:])
	}
	return msg
}

func run(cmd *cobra.Command, args []string) error {
	if app.showVersion {
		printVersion()
		return nil
	}

	cli.SetMonochrome(app.monochrome)
	configureLogLevel()

	cfg := config.Defaults()
	if app.configFile != "" {
		if err := cfg.LoadFile(app.configFile); err != nil {
			return err
		}
	}
	cfg.ApplyEnv()
	applyFlagOverrides(&cfg)
	cli.SetMonochrome(app.monochrome || cfg.Monochrome)

	if err := promptForPassword(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := store.Connect(ctx, cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if err != nil {
		return err
	}
	defer client.Close()

	printBanner(cfg)

	engine := reconciler.New(client, cache.New())
	return engine.Run(ctx)
}

func configureLogLevel() {
	switch {
	case app.debug:
		log.SetLevel("debug")
	case app.silent:
		log.SetLevel("error")
	default:
		log.SetLevel("info")
	}
}

func applyFlagOverrides(cfg *config.Config) {
	if app.host != "" {
		cfg.Host = app.host
	}
	if app.port != 0 {
		cfg.Port = app.port
	}
	if app.username != "" {
		cfg.Username = app.username
	}
	if app.password != "" {
		cfg.Password = app.password
	}
}

// promptForPassword interactively reads a password when a username was
// given but no password resolved from flags, env, or config file, and
// stdin is an actual terminal.
func promptForPassword(cfg *config.Config) error {
	if cfg.Username == "" || cfg.Password != "" {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	fmt.Print("Store password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	cfg.Password = string(b)
	return nil
}

func printVersion() {
	fmt.Println(version.Info())
}

// printBanner prints a startup summary table — suppressed under --silent.
func printBanner(cfg config.Config) {
	if app.silent {
		return
	}
	t := cli.NewTable("Setting", "Value")
	t.Row(cli.DotPad("Store", 20), fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	t.Row(cli.DotPad("Monochrome", 20), fmt.Sprintf("%v", cfg.Monochrome || app.monochrome))
	t.Row(cli.DotPad("Debug", 20), fmt.Sprintf("%v", app.debug))
	t.Flush()
	fmt.Println(cli.Green("cns-orchestrator starting"))
}
