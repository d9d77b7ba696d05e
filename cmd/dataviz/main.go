// Command dataviz renders charts and 2-D projections from CSV/JSON datasets.
//
// Examples:
//
//	dataviz plot --input diamonds.csv --kind scatter --x carat --y price --categorical cut --out fig.png
//	dataviz reduce --input diamonds.csv --method UMAP --neighbors 15 --min-dist 0.1 --categorical cut --out umap.svg
//	dataviz columns --input diamonds.csv
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mallahova/data-analysis-app/src/charts"
	"github.com/mallahova/data-analysis-app/src/export"
	"github.com/mallahova/data-analysis-app/src/logging"
	"github.com/mallahova/data-analysis-app/src/reduction"
	"github.com/mallahova/data-analysis-app/src/session"
)

var (
	flagInput     string
	flagOut       string
	flagTitle     string
	flagLogLevel  string
	flagNulls     string
	flagFillValue string
	flagDropCols  []string
	flagRenames   []string
)

func main() {
	root := &cobra.Command{
		Use:          "dataviz",
		Short:        "Render charts and dimensionality-reduction projections from tabular data",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetLevel(flagLogLevel)
		},
	}
	root.PersistentFlags().StringVar(&flagInput, "input", "", "input dataset (.csv or .json)")
	root.PersistentFlags().StringVar(&flagOut, "out", "figure.png", "output image (.png, .jpg or .svg)")
	root.PersistentFlags().StringVar(&flagTitle, "title", "", "plot title (default derived from the chart kind)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flagNulls, "nulls", "", "null handling: mean, drop or fill")
	root.PersistentFlags().StringVar(&flagFillValue, "fill-value", "", "value used with --nulls fill")
	root.PersistentFlags().StringSliceVar(&flagDropCols, "drop-columns", nil, "columns to drop before plotting")
	root.PersistentFlags().StringSliceVar(&flagRenames, "rename", nil, "column renames as old=new")

	root.AddCommand(plotCmd(), reduceCmd(), columnsCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSession opens the input dataset and applies the preprocessing flags.
func loadSession() (*session.Session, error) {
	if flagInput == "" {
		return nil, fmt.Errorf("--input is required")
	}
	s := session.New()
	if _, err := s.LoadFile(flagInput); err != nil {
		return nil, err
	}
	renames := map[string]string{}
	for _, r := range flagRenames {
		parts := strings.SplitN(r, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("--rename wants old=new, got %q", r)
		}
		renames[parts[0]] = parts[1]
	}
	if flagNulls != "" || len(renames) > 0 || len(flagDropCols) > 0 {
		_, err := s.Preprocess(session.PreprocessOptions{
			NullMethod: flagNulls,
			FillValue:  flagFillValue,
			RenameMap:  renames,
			DropCols:   flagDropCols,
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func plotCmd() *cobra.Command {
	var (
		kind        string
		xCol        string
		yCol        string
		zCol        string
		catCol      string
		bins        int
		lineColor   string
		lineWidth   float64
		barColor    string
		boxColor    string
		colorscale  string
		markerShape string
	)
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render one chart kind (line, scatter, histogram, heatmap, boxplot)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession()
			if err != nil {
				return err
			}
			params := charts.Params{}
			set := func(key, val string) {
				if val != "" {
					params[key] = val
				}
			}
			set("x_column", xCol)
			set("y_column", yCol)
			set("z_column", zCol)
			set("categorical_column", catCol)
			set("line_color", lineColor)
			set("bar_color", barColor)
			set("box_color", boxColor)
			set("colorscale", colorscale)
			set("marker_symbol", markerShape)
			if cmd.Flags().Changed("bins") {
				params["bins"] = bins
			}
			if cmd.Flags().Changed("line-width") {
				params["line_width"] = lineWidth
			}
			fig, err := s.CreatePlot(kind, flagTitle, params)
			if err != nil {
				return err
			}
			if len(fig.Traces) == 0 {
				logging.Warnf("nothing rendered (heatmap cardinality guard); no image written")
				return nil
			}
			if err := export.WriteFile(fig, flagOut); err != nil {
				return err
			}
			logging.Infof("wrote %s (%d traces)", flagOut, len(fig.Traces))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "scatter", "chart kind")
	cmd.Flags().StringVar(&xCol, "x", "", "x-axis column")
	cmd.Flags().StringVar(&yCol, "y", "", "y-axis column")
	cmd.Flags().StringVar(&zCol, "z", "", "z column (heatmap)")
	cmd.Flags().StringVar(&catCol, "categorical", "", "categorical column for scatter coloring")
	cmd.Flags().IntVar(&bins, "bins", charts.DefaultBins, "histogram bin count")
	cmd.Flags().StringVar(&lineColor, "line-color", "", "line color")
	cmd.Flags().Float64Var(&lineWidth, "line-width", charts.DefaultLineWidth, "line width")
	cmd.Flags().StringVar(&barColor, "bar-color", "", "histogram bar color")
	cmd.Flags().StringVar(&boxColor, "box-color", "", "box plot color")
	cmd.Flags().StringVar(&colorscale, "colorscale", "", "heatmap colorscale")
	cmd.Flags().StringVar(&markerShape, "marker-symbol", "", "scatter marker symbol")
	return cmd
}

func reduceCmd() *cobra.Command {
	var (
		method     string
		components int
		neighbors  int
		minDist    float64
		catCol     string
		columns    []string
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Project the dataset to 2-D with PCA or UMAP and render a scatter",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession()
			if err != nil {
				return err
			}
			opts := reduction.Options{
				NComponents:       components,
				CategoricalColumn: catCol,
				NNeighbors:        neighbors,
				MinDist:           minDist,
				Seed:              seed,
			}
			if len(columns) > 0 {
				opts.Columns = columns
			}
			fig, err := s.Reduce(method, flagTitle, opts)
			if err != nil {
				return err
			}
			if err := export.WriteFile(fig, flagOut); err != nil {
				return err
			}
			logging.Infof("wrote %s (%d traces)", flagOut, len(fig.Traces))
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "PCA", "reduction method: PCA or UMAP")
	cmd.Flags().IntVar(&components, "components", 2, "number of components")
	cmd.Flags().IntVar(&neighbors, "neighbors", reduction.DefaultNNeighbors, "UMAP n_neighbors")
	cmd.Flags().Float64Var(&minDist, "min-dist", reduction.DefaultMinDist, "UMAP min_dist")
	cmd.Flags().StringVar(&catCol, "categorical", "", "categorical column copied into the projection for coloring")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to project (default: all)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "UMAP random seed (0 = fixed default)")
	return cmd
}

func columnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the dataset's columns and inferred types",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession()
			if err != nil {
				return err
			}
			ds, err := s.Data()
			if err != nil {
				return err
			}
			for _, name := range ds.Columns() {
				kind, _ := ds.ColumnType(name)
				distinct, _ := ds.DistinctCount(name)
				fmt.Printf("%-24s %-12s %d distinct\n", name, kind, distinct)
			}
			fmt.Printf("%d rows\n", ds.NumRows())
			return nil
		},
	}
}
