// Command searchctl drives a running marketsearch service from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/marketsearch/internal/version"
	"github.com/kailas-cloud/marketsearch/pkg/client"
)

const defaultAddr = "http://localhost:8080"

type globalFlags struct {
	addr    string
	apiKey  string
	timeout time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:          "searchctl",
		Short:        "Control a marketsearch service",
		Long:         "searchctl retrains and queries a marketsearch service over its HTTP API.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&g.addr, "addr", envOr("MARKETSEARCH_ADDR", defaultAddr), "service base URL")
	root.PersistentFlags().StringVar(&g.apiKey, "api-key", os.Getenv("MARKETSEARCH_API_KEY"), "admin API key for train")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(trainCmd(g))
	root.AddCommand(queryCmd(g))
	root.AddCommand(statusCmd(g))
	root.AddCommand(healthCmd(g))
	root.AddCommand(versionCmd())
	return root
}

func (g *globalFlags) client() *client.Client {
	return client.New(g.addr, client.WithAPIKey(g.apiKey), client.WithTimeout(g.timeout))
}

func trainCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Rebuild the search corpus from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := g.client().Train(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func queryCmd(g *globalFlags) *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:     "query <text...>",
		Short:   "Search the catalog with free text",
		Example: `  searchctl query used ultrasound texas under 500 --page-size 5`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			res, err := g.client().Query(cmd.Context(), text, client.Page(page, pageSize))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number (default: 1)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "results per page (default: service setting)")
	return cmd
}

func statusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the served corpus and the last retrain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := g.client().Status(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func healthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := g.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), h); err != nil {
				return err
			}
			if h.Status != "ok" {
				return fmt.Errorf("service is %s", h.Status)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the searchctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
