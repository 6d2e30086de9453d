// Package cli implements agentctl, a command-line client for the agent-prompt
// server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alanyang/iobos/internal/client/api"
	"github.com/alanyang/iobos/internal/client/resolver"
	"github.com/alanyang/iobos/internal/client/session"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server   string
	token    string
	timeout  time.Duration
	output   string
	logLevel string
}

func (o *options) session() *session.Session {
	return session.New(o.token)
}

func (o *options) client() *api.Client {
	return api.New(o.server)
}

func (o *options) resolver(sess *session.Session) *resolver.Resolver {
	return resolver.New(o.client(), sess, resolver.WithTimeout(o.timeout))
}

// print writes v as indented JSON or YAML depending on --output.
func (o *options) print(w io.Writer, v any) error {
	switch o.output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", o.output)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "agentctl",
		Short: "agentctl: talk to the IO BOS agent-prompt server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.logLevel == "debug" {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.server, "server", envOr("IOBOS_SERVER", defaultServer), "server base URL (env IOBOS_SERVER)")
	pf.StringVar(&opts.token, "token", os.Getenv("IOBOS_TOKEN"), "bearer token (env IOBOS_TOKEN)")
	pf.DurationVar(&opts.timeout, "timeout", resolver.DefaultTimeout, "per-request timeout")
	pf.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, warn)")

	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newResolveCmd(opts))
	cmd.AddCommand(newActivateCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}
