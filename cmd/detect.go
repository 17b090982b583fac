package cmd

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/fanpilot/fanpilot/cmd/global"
	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/md14454/gosensors"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

// detectCmd lists temperature sensors usable as a profile's sensorPath.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect temperature sensors",
	Long:  `Detects all temperature sensors and prints them as a list`,
	Run: func(cmd *cobra.Command, args []string) {
		gosensors.Init()
		defer gosensors.Cleanup()
		chips := gosensors.GetDetectedChips()

		tableConfig := &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		}

		for i := 0; i < len(chips); i++ {
			chip := chips[i]

			var rows [][]string
			features := chip.GetFeatures()
			for j := 0; j < len(features); j++ {
				feature := features[j]
				if feature.Type != gosensors.FeatureTypeTemp {
					continue
				}

				subfeatures := feature.GetSubFeatures()
				for _, subfeature := range subfeatures {
					if subfeature.Type != gosensors.SubFeatureTypeTempInput {
						continue
					}
					sensorPath := fmt.Sprintf("%s/%s", chip.Path, subfeature.Name)
					value := fmt.Sprintf("%.1f°", subfeature.GetValue())
					rows = append(rows, []string{feature.GetLabel(), sensorPath, value})
				}
			}

			if len(rows) <= 0 {
				continue
			}
			sort.Slice(rows, func(i, j int) bool {
				return rows[i][1] < rows[j][1]
			})

			ui.Printfln("> %s", chip.Path)
			tab := table.Table{
				Headers: []string{"Label", "Sensor Path", "Value"},
				Rows:    rows,
			}
			var buf bytes.Buffer
			if err := tab.WriteTable(&buf, tableConfig); err != nil {
				panic(err)
			}
			ui.Printfln("%s", buf.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
