package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	"walletlab/internal/config"
	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/filter"
	"walletlab/internal/profiling"
	"walletlab/internal/workspace"
)

func newInspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [dataset]",
		Short: "Show the columns, inferred types and numeric profile of a dataset",
		Long: `Load a .csv or .xlsx dataset and print one line per column with the type that would be
suggested for its dictionary entry and, for numeric columns, descriptive statistics.

Example: walletlab inspect wallets.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}

			suggested := datasetloader.SuggestDictionary(ds)
			profiles := profiling.ProfileDataset(ds)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"filename":   ds.Filename,
					"rows":       ds.RowCount(),
					"dictionary": suggested,
					"profiles":   profiles,
				})
			}

			byColumn := make(map[string]profiling.ColumnProfile, len(profiles))
			for _, p := range profiles {
				byColumn[p.Column] = p
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d rows, %d columns\n\n", ds.Filename, ds.RowCount(), len(suggested))
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tTYPE\tCOUNT\tMISSING\tMEAN\tSTD DEV\tMIN\tMAX")
			for _, record := range suggested {
				p, ok := byColumn[record.Metric]
				if !ok {
					fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t-\n", record.Metric, record.DataType)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.4g\t%.4g\t%.4g\t%.4g\n",
					record.Metric, record.DataType, p.Count, p.Missing, p.Mean, p.StdDev, p.Min, p.Max)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newFilterCmd() *cobra.Command {
	var filtersFile string
	var output string

	cmd := &cobra.Command{
		Use:   "filter [dataset]",
		Short: "Keep the rows that satisfy every filter in a YAML or JSON file",
		Long: `Apply a list of filter definitions to a dataset and write the retained rows.

The filters file holds either a list of filters or a document with a "filters" key:

  filters:
    - column_key: pnl
      data_type: currency
      operator: {type: numeric, operator: range}
      value: [100, 5000]

Example: walletlab filter wallets.csv -f filters.yaml -o kept.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			filters, err := readFilters(filtersFile)
			if err != nil {
				return err
			}

			for _, f := range filters {
				fmt.Fprintf(cmd.ErrOrStderr(), "filter: %s\n", f.Description)
			}
			rows := filter.ApplyFilters(ds.Rows, filters)
			fmt.Fprintf(cmd.ErrOrStderr(), "kept %d of %d rows\n", len(rows), ds.RowCount())

			return writeRows(cmd.OutOrStdout(), output, ds.Headers, rows)
		},
	}

	cmd.Flags().StringVarP(&filtersFile, "filters", "f", "", "YAML or JSON file with filter definitions")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.csv or .xlsx); stdout when empty")
	_ = cmd.MarkFlagRequired("filters")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var chainsFile string
	var filtersFile string
	var output string

	cmd := &cobra.Command{
		Use:   "analyze [dataset]",
		Short: "Evaluate analysis chains and append their results as columns",
		Long: `Evaluate one or more analysis chains over the dataset, optionally after filtering it,
and write the rows with one extra column per chain. Cells without a result are left empty.

The chains file holds a single chain, a list of chains or a document with an
"analysis_chains" key:

  result_name: pnl_distance
  steps:
    - {column_key: pnl, method_id: bellCurve}

Example: walletlab analyze wallets.csv -c chain.yaml -f filters.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			chains, err := readChains(chainsFile)
			if err != nil {
				return err
			}
			var filters []pipeline.FilterDefinition
			if filtersFile != "" {
				if filters, err = readFilters(filtersFile); err != nil {
					return err
				}
			}

			result, err := workspace.Evaluate(ds.Rows, filters, chains)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "evaluated %d chains over %d of %d rows\n",
				len(result.Columns), result.MatchedRows, result.TotalRows)

			headers := append([]string(nil), ds.Headers...)
			for _, col := range result.Columns {
				headers = append(headers, col.Name)
			}
			return writeRows(cmd.OutOrStdout(), output, headers, result.Rows)
		},
	}

	cmd.Flags().StringVarP(&chainsFile, "chains", "c", "", "YAML or JSON file with analysis chains")
	cmd.Flags().StringVarP(&filtersFile, "filters", "f", "", "Optional YAML or JSON file with filters applied first")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.csv or .xlsx); stdout when empty")
	_ = cmd.MarkFlagRequired("chains")
	return cmd
}

func newMetadataCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "metadata [dataset] [dictionary] [summary]",
		Short: "Merge a dictionary with the dataset columns and summary statistics",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			dictionary, err := loadSlot(dataset.SlotDictionary, args[1])
			if err != nil {
				return err
			}
			var summary dataset.SummaryStats
			if len(args) == 3 {
				loaded, err := loadSlot(dataset.SlotSummary, args[2])
				if err != nil {
					return err
				}
				summary = loaded.Summary
			}

			metadata := datasetloader.MergeColumnMetadata(dictionary.Dictionary, ds.Columns(), summary)
			if asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(metadata)
			}
			return writeJSON(cmd.OutOrStdout(), metadata)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print YAML instead of JSON")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the walletlab configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "walletlab.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(config.Defaults(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(cfgFile)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
