package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/TFMV/neongraph/ingest"
	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a department CSV export to the JSON data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := ingest.LoadFile(in)
			if err != nil {
				return err
			}

			var w io.Writer = a.out
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := ingest.Encode(w, ds.Departments); err != nil {
				return err
			}
			a.logger.Info("converted", "in", in, "out", out, "departments", len(ds.Departments))
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "input file (.csv or .json)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output JSON file, - for stdout")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newDepartmentsCmd(a *app) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:     "departments",
		Aliases: []string{"ls"},
		Short:   "List departments in the dataset",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var paths []string
			if data != "" {
				paths = []string{data}
			}
			ds, err := a.dataset(cmd.Context(), paths...)
			if err != nil {
				return err
			}

			banner(a.out, ds.Source)
			rows := make([][]string, 0, len(ds.Departments))
			for _, d := range ds.SortedDepartments() {
				cplx := ""
				if d.IsComplex() {
					cplx = "yes"
				}
				rows = append(rows, []string{
					d.ID,
					d.Name,
					strconv.Itoa(len(d.Degrees)),
					strconv.Itoa(len(d.InternalPartners)),
					strconv.Itoa(len(d.ExternalPartners)),
					cplx,
				})
			}
			table(a.out, []string{"ID", "NAME", "DEGREES", "INTERNAL", "EXTERNAL", "COMPLEX"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "department data file (default from config)")
	return cmd
}
