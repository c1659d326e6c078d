// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newStoreCmd(c *cli) *cobra.Command {
	var name, url string
	cmd := &cobra.Command{
		Use:   "store [file]",
		Short: "Upload a media file, or have the server fetch --from-url, and print the stored name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			switch {
			case len(args) == 1:
				var err error
				data, err = afero.ReadFile(c.fs, args[0])
				if err != nil {
					return err
				}
				if name == "" {
					name = filepath.Base(args[0])
				}
			case url == "":
				return fmt.Errorf("either a file or --from-url is required")
			}
			if name == "" {
				return fmt.Errorf("--name is required with --from-url")
			}
			stored, err := c.client().StoreMediaFile(cmd.Context(), name, data, url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), stored)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Filename to store under (defaults to the file's base name).")
	cmd.Flags().StringVar(&url, "from-url", "", "Remote URL for the server to fetch instead of a local file.")
	return cmd
}

func newRetrieveCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "retrieve <filename>",
		Short: "Download a stored media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, found, err := c.client().RetrieveMediaFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no media file named %q", args[0])
			}
			if out == "" {
				out = filepath.Base(args[0])
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return afero.WriteFile(c.fs, out, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output path, or - for stdout (defaults to the filename).")
	return cmd
}

func newMediaCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "List or delete stored media files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls [pattern]",
		Short: "List stored media names matching a glob",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}
			names, err := c.client().MediaFileNames(cmd.Context(), pattern)
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), names)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <filename>",
		Short: "Delete a stored media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.client().DeleteMediaFile(cmd.Context(), args[0])
		},
	})
	return cmd
}

func newBrowseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <query>",
		Short: "Open the card browser on a search query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.client().GuiBrowse(cmd.Context(), args[0])
		},
	}
}
