// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tomtom215/ankibridge/internal/client"
)

const (
	envURL = "ANKICTL_URL"
	envKey = "ANKICTL_API_KEY"
)

// cli carries what every subcommand shares. Tests swap fs and httpClient.
type cli struct {
	url        string
	key        string
	timeout    time.Duration
	fs         afero.Fs
	httpClient *http.Client
}

func newCLI() *cli {
	return &cli{fs: afero.NewOsFs()}
}

func (c *cli) client() *client.Client {
	hc := c.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: c.timeout}
	}
	return client.New(c.url, client.WithAPIKey(c.key), client.WithHTTPClient(hc))
}

func newRootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ankictl",
		Short:        "Call AnkiConnect actions",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&c.url, "url", envOr(envURL, client.DefaultURL), "AnkiConnect endpoint.")
	cmd.PersistentFlags().StringVar(&c.key, "key", os.Getenv(envKey), "API key, if the server requires one.")
	cmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "Per-request timeout.")

	cmd.AddCommand(
		newVersionCmd(c),
		newPermissionCmd(c),
		newDecksCmd(c),
		newModelsCmd(c),
		newFieldsCmd(c),
		newFindCmd(c),
		newInfoCmd(c),
		newAddCmd(c),
		newCanAddCmd(c),
		newUpdateCmd(c),
		newStoreCmd(c),
		newRetrieveCmd(c),
		newMediaCmd(c),
		newBrowseCmd(c),
	)
	return cmd
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server's protocol version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := c.client().Version(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newPermissionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "permission",
		Short: "Ask whether this client may use the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.client().RequestPermission(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
}
