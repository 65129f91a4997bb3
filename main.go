package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"psxscreener/browser"
	"psxscreener/cache"
	"psxscreener/config"
	"psxscreener/dashboard"
	"psxscreener/finance"
	"psxscreener/logger"
	"psxscreener/report"
	"psxscreener/stock"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// browserSettle is how long a rendered page gets to run its scripts
const browserSettle = 2 * time.Second

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "psxscreener",
		Short:         "Rank PSX companies by discount to a P/E-based fair value",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file (default psxscreener.toml if present)")

	root.AddCommand(buildCmd(), serveCmd(), fetchCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New("psxscreener", cfg.Logging.Level), nil
}

// newFetcher wires the page fetcher. The returned func releases the cache
// connection and the browser, if any.
func newFetcher(cfg *config.Config, log zerolog.Logger) (*stock.Fetcher, func()) {
	c := cache.New(cfg.Cache.RedisAddr, cfg.Cache.Password, cfg.Cache.DB)

	var renderer *browser.Renderer
	var r stock.Renderer
	if cfg.Fetch.Mode == stock.ModeBrowser {
		renderer = browser.New(cfg.Fetch.UserAgent, browserSettle)
		r = renderer
	}

	f := stock.NewFetcher(stock.Options{
		BaseURL:   cfg.Fetch.BaseURL,
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout.Duration,
		Mode:      cfg.Fetch.Mode,
		CacheTTL:  cfg.Cache.TTL.Duration,
	}, c, r, log)

	return f, func() {
		if renderer != nil {
			renderer.Close()
		}
		c.Close()
	}
}

func outputs(cfg *config.Config) report.Outputs {
	return report.Outputs{
		Dir:      cfg.Data.Dir,
		CSVFile:  cfg.Data.CSVFile,
		HTMLFile: cfg.Data.HTMLFile,
		Title:    cfg.Data.Title,
	}
}

func buildCmd() *cobra.Command {
	var symbolsPath, outDir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch every listed symbol and write stocks.csv and stocks.html",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Data.Dir = outDir
			}
			if symbolsPath == "" {
				symbolsPath = filepath.Join(cfg.Data.Dir, cfg.Data.SymbolsFile)
			}

			symbols, err := report.ReadSymbols(symbolsPath)
			if err != nil {
				if errors.Is(err, report.ErrSymbolsNotFound) {
					return fmt.Errorf("%w; create it with one ticker per line", err)
				}
				return err
			}

			fetcher, closeFetcher := newFetcher(cfg, log)
			defer closeFetcher()

			builder := report.NewBuilder(fetcher, finance.NewExtractor(cfg.Fetch.PriceMarker), cfg.PE, cfg.Fetch.Delay.Duration, log)
			rows, err := builder.Run(cmd.Context(), symbols)
			if err != nil {
				log.Warn().Err(err).Int("rows", len(rows)).Msg("build interrupted, writing partial table")
			}
			report.SortRows(rows)

			paths, saveErr := outputs(cfg).Save(rows)
			if saveErr != nil {
				return saveErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", strings.Join(paths, " and "))
			return err
		},
	}

	cmd.Flags().StringVar(&symbolsPath, "symbols", "", "ticker list, one per line (default <data dir>/symbols.csv)")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for stocks.csv and stocks.html (default data)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the filterable dashboard over the last build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Dashboard.Addr
			}

			srv := dashboard.NewServer(outputs(cfg).CSVPath(), cfg.Data.Title, log)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8501)")
	return cmd
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch SYMBOL",
		Short: "Fetch and value a single symbol, printing the row as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			fetcher, closeFetcher := newFetcher(cfg, log)
			defer closeFetcher()

			builder := report.NewBuilder(fetcher, finance.NewExtractor(cfg.Fetch.PriceMarker), cfg.PE, 0, log)
			row := builder.Evaluate(cmd.Context(), args[0])

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(row); err != nil {
				return err
			}
			if row.Error != "" {
				return errors.New(row.Error)
			}
			return nil
		},
	}
}

