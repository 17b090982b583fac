package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/fanpilot/fanpilot/internal/configuration"
	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current state of the running fanpilot daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := configuration.DetectAndReadConfigFile()
		ui.Debug("Using configuration file at: %s", configPath)
		configuration.LoadConfig()

		apiConfig := configuration.CurrentConfig.Api
		url := fmt.Sprintf("http://%s:%d/status/", apiConfig.Host, apiConfig.Port)

		response, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("is the fanpilot daemon running? %w", err)
		}
		defer func() {
			_ = response.Body.Close()
		}()

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return err
		}

		ui.Printfln("%s", string(body))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
