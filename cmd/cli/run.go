package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	runServerURL string
	runDay       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Trigger a scoring run on a ReliScore server.",
	Long: `Triggers a scoring run for the given day (YYYY-MM-DD). Without --day
the server resolves the latest telemetry day. Re-running a day is safe:
predictions are upserted per (drive, day, model version).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := json.Marshal(map[string]string{"day": runDay})
		if err != nil {
			return err
		}

		client := &http.Client{Timeout: 10 * time.Minute}
		resp, err := client.Post(runServerURL+"/api/v1/score_runs", "application/json", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("could not reach server: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("run failed (%d): %s", resp.StatusCode, string(body))
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			fmt.Println(string(body))
			return nil
		}
		fmt.Println(pretty.String())
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runServerURL, "server", "http://localhost:8080", "base URL of the ReliScore server")
	runCmd.Flags().StringVar(&runDay, "day", "", "target day (YYYY-MM-DD); defaults to the latest telemetry day")
	rootCmd.AddCommand(runCmd)
}
