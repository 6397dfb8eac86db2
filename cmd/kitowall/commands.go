package main

import (
	"github.com/KitotsuMolina/Kitowall/internal/cache"
	"github.com/KitotsuMolina/Kitowall/internal/pool"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Pick and apply the next wallpaper on every output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pack, _ := cmd.Flags().GetString("pack")
		return runCommand(func(d deps) error {
			res, err := d.Engine.Rotate(cmd.Context(), pack)
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune the cache by TTL and size budget (favorites are kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(d deps) error {
			res, err := d.Ledger.Prune()
			if err != nil {
				return err
			}
			d.Metrics.EvictionsTotal.Add(float64(res.Removed))
			return printJSON(res)
		})
	},
}

var prunePackCmd = &cobra.Command{
	Use:   "prune-pack <name>",
	Short: "Prune the cache entries of a single pack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(d deps) error {
			res, err := d.Ledger.PrunePack(args[0])
			if err != nil {
				return err
			}
			d.Metrics.EvictionsTotal.Add(float64(res.Removed))
			return printJSON(res)
		})
	},
}

var hardPruneCmd = &cobra.Command{
	Use:   "hard-prune",
	Short: "Delete downloaded wallpapers from disk (favorites are kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pack, _ := cmd.Flags().GetString("pack")
		return runCommand(func(d deps) error {
			var (
				res cache.HardPruneResult
				err error
			)
			if pack != "" {
				res, err = d.Ledger.HardPrunePack(pack)
			} else {
				res, err = d.Ledger.HardPruneAll()
			}
			if err != nil {
				return err
			}
			d.Metrics.EvictionsTotal.Add(float64(res.RemovedFiles))
			return printJSON(res)
		})
	},
}

// poolStatus is the output of pool-status
type poolStatus struct {
	Sources []pool.SourceReport `json:"sources"`
	Cache   cacheStatus         `json:"cache"`
}

type cacheStatus struct {
	cache.Usage
	Human string `json:"human"`
}

var poolStatusCmd = &cobra.Command{
	Use:   "pool-status",
	Short: "Show per-source candidate counts of the aggregated pool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		refresh, _ := cmd.Flags().GetBool("refresh")
		return runCommand(func(d deps) error {
			reports, err := d.Aggregator.Status(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			usage, err := d.Ledger.Usage()
			if err != nil {
				return err
			}
			return printJSON(poolStatus{
				Sources: reports,
				Cache:   cacheStatus{Usage: usage, Human: humanize.IBytes(usage.Bytes)},
			})
		})
	},
}

var hydrateCmd = &cobra.Command{
	Use:   "hydrate <pack>",
	Short: "Download wallpapers of a pack without applying them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		return runCommand(func(d deps) error {
			report, err := d.Engine.Hydrate(cmd.Context(), args[0], count)
			if err != nil {
				return err
			}
			return printJSON(report)
		})
	},
}

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "List the detected outputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(d deps) error {
			outputs, err := d.Detector.Outputs(cmd.Context())
			if err != nil {
				return err
			}
			if outputs == nil {
				outputs = []string{}
			}
			return printJSON(map[string][]string{"outputs": outputs})
		})
	},
}

// addPackFlag registers the --pack flag shared by rotate, hard-prune and daemon
func addPackFlag(fs *pflag.FlagSet, usage string) {
	fs.String("pack", "", usage)
}

func init() {
	addPackFlag(rotateCmd.Flags(), `pack to rotate from ("pool" for the aggregated pool)`)
	addPackFlag(hardPruneCmd.Flags(), "only prune this pack's download folder")
	poolStatusCmd.Flags().Bool("refresh", false, "refresh every source index first")
	hydrateCmd.Flags().Int("count", 5, "number of wallpapers to download")

	rootCmd.AddCommand(rotateCmd, pruneCmd, prunePackCmd, hardPruneCmd, poolStatusCmd, hydrateCmd, outputsCmd)
}
