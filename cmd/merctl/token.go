package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joao-fontenele/mercosys/internal/auth"
)

// tokenCmd mints a development token for the gateway. It needs the shared
// secret, so it is only useful against a local stack.
func tokenCmd(out io.Writer) *cobra.Command {
	var (
		subject string
		issuer  string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token with AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("AUTH_JWT_SECRET")
			if secret == "" {
				return errors.New("AUTH_JWT_SECRET is required")
			}
			if issuer == "" {
				issuer = os.Getenv("AUTH_JWT_ISSUER")
			}

			token, err := auth.Sign(secret, issuer, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "dev", "token subject")
	cmd.Flags().StringVar(&issuer, "issuer", "", "token issuer, defaults to AUTH_JWT_ISSUER")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
