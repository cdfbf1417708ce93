package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/diesi/ask/internal/cli"
	"github.com/diesi/ask/internal/config"
	"github.com/diesi/ask/internal/logging"
	"github.com/diesi/ask/internal/openai"
	"github.com/diesi/ask/internal/server"
	"github.com/diesi/ask/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fatal(err)
	}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ask", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.StringP("config", "c", "", "config file (default $HOME/.ask.yaml)")
	fs.StringP("model", "m", openai.DefaultModel, "model identifier")
	fs.String("base-url", openai.DefaultBaseURL, "API base URL; /chat/completions is appended")
	fs.DurationP("timeout", "t", openai.DefaultTimeout, "per-request timeout")
	fs.String("listen", config.DefaultListen, "listen address for serve")
	fs.Bool("debug", false, "debug logging")
	fs.Bool("no-color", false, "disable colored output")
	fs.String("log-format", config.DefaultLogFormat, "log format: text or json")
	fs.Bool("version", false, "print version and exit")
	fs.BoolP("help", "h", false, "show help")
	return fs
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet()
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w (see ask --help)", err)
	}
	if help, _ := fs.GetBool("help"); help {
		fmt.Fprint(stdout, buildHelp())
		return nil
	}
	if v, _ := fs.GetBool("version"); v {
		fmt.Fprintf(stdout, "ask %s\n", version.Get())
		return nil
	}

	rest := fs.Args()
	cmd := ""
	// Words after "--" are always prompt text.
	if len(rest) > 0 && fs.ArgsLenAtDash() != 0 {
		switch rest[0] {
		case "chat", "serve", "help":
			cmd, rest = rest[0], rest[1:]
		}
	}
	if cmd == "help" {
		fmt.Fprint(stdout, buildHelp())
		return nil
	}
	if cmd != "" && len(rest) > 0 {
		return fmt.Errorf("%s takes no arguments, got %q (use \"ask -- %s ...\" to ask about it)", cmd, strings.Join(rest, " "), cmd)
	}

	configFile, _ := fs.GetString("config")
	cfg, err := config.Load(config.Options{File: configFile, Flags: fs})
	if err != nil {
		return err
	}
	if cfg.NoColor {
		cli.DisableColors()
	}
	config.WarnUnknownEnv(stderr)
	log := logging.New(stderr, cfg.LogFormat, cfg.Debug)
	if cfg.File != "" {
		log.WithField("file", cfg.File).Debug("config loaded")
	}
	if cfg.APIKey == "" {
		return errors.New("OPENAI_API_KEY (or ASK_API_KEY) env var missing")
	}
	client := newClient(cfg, log)

	switch cmd {
	case "chat":
		rl := cli.NewLiner()
		defer rl.Close()
		s := &cli.Session{Client: client, Lines: rl, Out: stdout, Err: stderr, Log: log}
		return s.Run(ctx)
	case "serve":
		return server.ListenAndServe(ctx, cfg.Listen, server.New(client, log), log)
	}

	prompt := strings.Join(rest, " ")
	if len(rest) == 0 {
		if cli.IsTerminal(stdin) {
			fmt.Fprint(stdout, buildHelp())
			return nil
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read prompt from stdin: %w", err)
		}
		prompt = strings.TrimRight(string(b), "\r\n")
	}
	return cli.Ask(ctx, client, prompt, stdout, stderr)
}

func newClient(cfg config.Config, log *logrus.Logger) *openai.Client {
	c := openai.NewClient(openai.StaticKey(cfg.APIKey))
	c.HTTPClient.SetLogger(log)
	c.Log = log
	c.BaseURL = cfg.BaseURL
	c.Model = cfg.Model
	c.Timeout = cfg.Timeout
	return c
}

func buildHelp() string {
	var b strings.Builder
	b.WriteString("ask - send a prompt to a chat completion API and print the answer\n\n")
	b.WriteString("Usage:\n")
	b.WriteString("  ask [flags] <prompt...>   ask one question\n")
	b.WriteString("  ask [flags] < file        read the prompt from stdin\n")
	b.WriteString("  ask chat [flags]          interactive prompt; every line is a new question\n")
	b.WriteString("  ask serve [flags]         serve POST /v1/complete {\"prompt\": \"...\"}\n\n")
	b.WriteString("Flags:\n")
	b.WriteString(newFlagSet().FlagUsages())
	b.WriteString("\nEnvironment variables:\n")
	b.WriteString("  OPENAI_API_KEY      (required) API key; ASK_API_KEY takes precedence\n")
	b.WriteString("  ASK_MODEL           (optional) Model name, default " + openai.DefaultModel + "\n")
	b.WriteString("  ASK_BASE_URL        (optional) API base URL\n")
	b.WriteString("  ASK_TIMEOUT         (optional) Request timeout, e.g. 30s or 30\n")
	b.WriteString("  ASK_LISTEN          (optional) serve listen address, default " + config.DefaultListen + "\n")
	b.WriteString("  ASK_DEBUG, ASK_LOG_FORMAT, ASK_NO_COLOR, ASK_CONFIG\n")
	b.WriteString("A .env file in the working directory is loaded when present.\n")
	return b.String()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%sError:%s %v\n", cli.ColorRed, cli.ColorReset, err)
	os.Exit(1)
}
