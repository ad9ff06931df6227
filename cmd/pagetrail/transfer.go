package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagetrail/pagetrail-server/internal/api"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

func newImportCmd(a *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import books from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importMode, err := service.ParseImportMode(mode)
			if err != nil {
				return err
			}

			var src io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			data, err := io.ReadAll(io.LimitReader(src, api.MaxImportSize+1))
			if err != nil {
				return err
			}
			if len(data) > api.MaxImportSize {
				return fmt.Errorf("import file exceeds %d bytes", api.MaxImportSize)
			}

			res, err := a.library().Import(cmd.Context(), data, importMode)
			if res != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %d, skipped %d, %d books total\n",
					res.Mode, res.Imported, res.Skipped, res.Total)
				if res.Normalized > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%d books had an unknown status and were shelved as wishlist\n", res.Normalized)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(service.ImportMerge), "replace or merge")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filename, data, err := a.library().Export(cmd.Context())
			if err != nil {
				return err
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output path, "-" for stdout (default: dated filename)`)
	return cmd
}
