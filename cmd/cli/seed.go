package cli

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/CSingh26/ReliScore/internal/fixtures"
	"github.com/CSingh26/ReliScore/pkg/constants"
)

var (
	seedDrives   int
	seedDays     int
	seedEndDay   string
	seedDegraded float64
	seedSeed     int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic telemetry fixtures as JSON on stdout.",
	Long: `Generates a deterministic synthetic fleet for local testing. The
output is a JSON object mapping drive ids to telemetry histories, suitable
for loading with the ingestion tooling. Not for production use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		end := time.Now().UTC()
		if seedEndDay != "" {
			parsed, err := time.ParseInLocation(constants.DayFormat, seedEndDay, time.UTC)
			if err != nil {
				return err
			}
			end = parsed
		}

		fleet := fixtures.Generate(fixtures.GeneratorConfig{
			Drives:      seedDrives,
			Days:        seedDays,
			EndDay:      end,
			DegradedPct: seedDegraded,
			Seed:        seedSeed,
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fleet)
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedDrives, "drives", 100, "number of drives")
	seedCmd.Flags().IntVar(&seedDays, "days", 45, "days of history per drive")
	seedCmd.Flags().StringVar(&seedEndDay, "end-day", "", "last telemetry day (YYYY-MM-DD); defaults to today")
	seedCmd.Flags().Float64Var(&seedDegraded, "degraded-pct", 0.1, "fraction of drives with a worsening trend")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 42, "random seed")
	rootCmd.AddCommand(seedCmd)
}
