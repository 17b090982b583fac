package profile

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/fanpilot/fanpilot/cmd/global"
	"github.com/fanpilot/fanpilot/internal/configuration"
	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/fanpilot/fanpilot/internal/util"
	"github.com/guptarohit/asciigraph"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
	"golang.org/x/exp/maps"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configured fan profile(s) to console",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configPath := configuration.DetectAndReadConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()

		err = configuration.Validate()
		if err != nil {
			ui.Fatal(err.Error())
		}

		profiles := configuration.CurrentConfig.Profiles
		for idx, profileConf := range profiles.Definitions {
			if idx > 0 {
				ui.Printfln("")
				ui.Printfln("")
			}

			role := ""
			if profileConf.ID == profiles.Default {
				role = "default"
			}
			if profileConf.ID == profiles.Alternate {
				if len(role) > 0 {
					role = "default, alternate"
				} else {
					role = "alternate"
				}
			}

			// print table
			tab := table.Table{
				Headers: []string{"ID", "Label", "Battery Cap", "Role"},
				Rows: [][]string{
					{
						profileConf.ID,
						profileConf.Label,
						strconv.Itoa(profileConf.AlternateSpeedCap) + "%",
						role,
					},
				},
			}
			var buf bytes.Buffer
			tableErr := tab.WriteTable(&buf, &table.Config{
				ShowIndex:       false,
				Color:           !global.NoColor,
				AlternateColors: true,
				TitleColorCode:  ansi.ColorCode("white+buf"),
				AltColorCodes: []string{
					ansi.ColorCode("white"),
					ansi.ColorCode("white:236"),
				},
			})
			if tableErr != nil {
				panic(tableErr)
			}
			// the table contains literal % signs (battery cap)
			ui.Printfln("%s", buf.String())

			if len(profileConf.Steps) <= 0 {
				continue
			}

			steps := profileConf.Steps
			start := minKey(steps)
			stop := maxKey(steps)
			graphValues := util.InterpolateLinearly(&steps, start, stop)

			keys := maps.Keys(graphValues)
			sort.Ints(keys)

			values := make([]float64, 0, len(keys))
			for _, k := range keys {
				values = append(values, graphValues[k])
			}

			caption := "Speed % / Temperature °C"
			graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
			ui.Printfln("%s", graph)
		}

		return nil
	},
}

func minKey(values map[int]float64) int {
	result := 0
	first := true
	for key := range values {
		if first || key < result {
			result = key
			first = false
		}
	}
	return result
}

func maxKey(values map[int]float64) int {
	result := 0
	first := true
	for key := range values {
		if first || key > result {
			result = key
			first = false
		}
	}
	return result
}

func init() {
	Command.AddCommand(listCmd)
}
