// This command is only used for local testing: it resolves a single content
// key through the configured provider chain, using the same environment
// configuration as the server, and prints the result as JSON.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/catalog"
	"github.com/gnome-horoscope/gnome-bridge/internal/config"
	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type result struct {
	Key string `json:"key"`
	resolver.ResolvedContent
}

func newRootCommand() *cobra.Command {
	var (
		date   string
		repeat int
	)

	cmd := &cobra.Command{
		Use:   "resolve <family> [value]",
		Short: "Resolve one content key through the configured providers.",
		Long: `resolve builds the same resolvers as the server from the environment
and resolves a single key, e.g. "resolve horoscope leo" or "resolve moon".

Use --repeat to resolve the key several times and observe cache hits.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			day := time.Now()
			if date != "" {
				parsed, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("--date must be formatted as YYYY-MM-DD: %w", err)
				}
				day = parsed
			}

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("configuration load failed: %w", err)
			}

			cat, err := catalog.New(cfg, catalog.Options{})
			if err != nil {
				return fmt.Errorf("resolver configuration failed: %w", err)
			}
			defer cat.Close()

			family := args[0]
			res, ok := cat.Resolver(family)
			if !ok {
				return fmt.Errorf("unknown content family %q", family)
			}

			var value string
			if len(args) > 1 {
				value = args[1]
			}
			value, err = normalizeValue(family, value)
			if err != nil {
				return err
			}
			key := resolver.DailyKey(family, value, day)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			for range max(repeat, 1) {
				content, err := res.Resolve(ctx, key)
				if err != nil {
					return err
				}

				if err := enc.Encode(result{Key: key.String(), ResolvedContent: content}); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to resolve, as YYYY-MM-DD (defaults to today)")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "number of times to resolve the key")

	return cmd
}

// normalizeValue maps the value to the form the server keys on: horoscope
// signs become their slug, and families without per-value content share one
// entry.
func normalizeValue(family, value string) (string, error) {
	if family != catalog.FamilyHoroscope {
		return resolver.AllValues, nil
	}

	if value == "" {
		return "", errors.New("a sign is required for the horoscope family")
	}

	sign, err := horoscope.ParseSign(value)
	if err != nil {
		return "", err
	}

	return sign.Slug, nil
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
