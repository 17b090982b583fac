package cmd

import (
	"fmt"
	"net/http"

	"github.com/fanpilot/fanpilot/internal/configuration"
	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/spf13/cobra"
)

// triggerCmd forwards a hardware hotkey press to the running daemon. It
// is meant to be wired into the acpid event table for the fan key.
var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Send a fan hotkey press to the running fanpilot daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := configuration.DetectAndReadConfigFile()
		ui.Debug("Using configuration file at: %s", configPath)
		configuration.LoadConfig()

		apiConfig := configuration.CurrentConfig.Api
		url := fmt.Sprintf("http://%s:%d/hotkey/", apiConfig.Host, apiConfig.Port)

		response, err := http.Post(url, "text/plain", nil)
		if err != nil {
			return fmt.Errorf("is the fanpilot daemon running? %w", err)
		}
		defer func() {
			_ = response.Body.Close()
		}()

		if response.StatusCode >= 300 {
			return fmt.Errorf("unexpected response: %s", response.Status)
		}

		ui.Debug("Hotkey press delivered")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(triggerCmd)
}
