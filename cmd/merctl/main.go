package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joao-fontenele/mercosys/internal/client"
	"github.com/joao-fontenele/mercosys/internal/config"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	out     io.Writer
	apiURL  string
	token   string
	client  *client.Client
	session *client.Session
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "merctl",
		Short:         "Manage mercosys customers, products and orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("api-url") {
				a.apiURL = cfg.APIURL
			}
			if !cmd.Flags().Changed("token") {
				a.token = cfg.Token
			}

			a.client = client.New(a.apiURL,
				client.WithToken(a.token),
				client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
			)
			a.session = client.NewSession(a.client)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "gateway or API base URL (MERCOSYS_API_URL)")
	root.PersistentFlags().StringVar(&a.token, "token", "", "bearer token (MERCOSYS_TOKEN)")

	root.AddCommand(
		a.customersCmd(),
		a.productsCmd(),
		a.ordersCmd(),
		a.dashboardCmd(),
		tokenCmd(out),
	)
	return root
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) table(header string, rows func(w io.Writer)) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the sales overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.client.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(d)
		},
	}
}
