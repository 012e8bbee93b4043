package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mo-hanxuan/crypto-converter/internal/cache"
	"github.com/mo-hanxuan/crypto-converter/internal/config"
	"github.com/mo-hanxuan/crypto-converter/internal/domain"
	"github.com/mo-hanxuan/crypto-converter/internal/httpx"
	"github.com/mo-hanxuan/crypto-converter/internal/provider"
	"github.com/mo-hanxuan/crypto-converter/internal/service"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

func newService() *service.ConvertService {
	godotenv.Load()
	cfg := config.Load()

	tracer := trace.NewNoopTracerProvider().Tracer("crypto-convert")
	client := httpx.NewClient(httpx.Options{
		Store:   cache.NewMemory(),
		TTL:     cfg.CacheTTL,
		Spacing: cfg.RequestSpacing,
		Timeout: cfg.RequestTimeout,
		Tracer:  tracer,
	})

	gecko := provider.NewCoinGecko(client, cfg.CoinGeckoBaseURL)
	paprika := provider.NewCoinPaprika(client, cfg.CoinPaprikaBaseURL)
	lore := provider.NewCoinLore(client, cfg.CoinLoreBaseURL)
	binance := provider.NewBinance(client, cfg.BinanceBaseURL)
	fiat := provider.NewExchangeRate(client, cfg.ExchangeRateBaseURL, cfg.ExchangeRateAPIKey)

	resolver := provider.NewResolver(tracer,
		[]provider.Adapter{gecko, paprika, lore, binance},
		[]provider.Adapter{gecko, paprika, binance},
	)
	return service.NewConvertService(tracer, resolver, fiat)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crypto-convert",
		Short:         "Convert between fiat and crypto currencies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConvertCmd(), newHistoryCmd(), newCurrenciesCmd())
	return root
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert AMOUNT FROM TO",
		Short: "Convert an amount between two currencies",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := domain.Parse(args[1])
			if err != nil {
				return err
			}
			to, err := domain.Parse(args[2])
			if err != nil {
				return err
			}

			result, err := newService().Convert(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", args[0], from.Code, result.Formatted, to.Code)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history FROM TO",
		Short: "Print the historical rate series for a pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := domain.Parse(args[0])
			if err != nil {
				return err
			}
			to, err := domain.Parse(args[1])
			if err != nil {
				return err
			}

			points, err := newService().History(cmd.Context(), from, to, days)
			if err != nil {
				return err
			}
			for _, p := range points {
				ts := time.UnixMilli(p.Timestamp).UTC().Format(time.RFC3339)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g\n", ts, p.Value)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "range in days (5, 30, 90, 365)")
	return cmd
}

func newCurrenciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List the supported currency codes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), domain.FormatSupported())
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
