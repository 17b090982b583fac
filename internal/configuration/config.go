package configuration

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath         string `json:"dbPath"`
	StatusFilePath string `json:"statusFilePath"`

	Api        ApiConfig        `json:"api"`
	Statistics StatisticsConfig `json:"statistics"`

	AutoStart AutoStartConfig `json:"autoStart"`
	GpuPower  GpuPowerConfig  `json:"gpuPower"`
	Power     PowerConfig     `json:"power"`
	Profiles  ProfilesConfig  `json:"profiles"`
	Hotkey    HotkeyConfig    `json:"hotkey"`
	Runner    RunnerConfig    `json:"runner"`
}

type ApiConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

type AutoStartConfig struct {
	Enabled bool   `json:"enabled"`
	TaskId  string `json:"taskId"`
}

type GpuPowerConfig struct {
	// Default is the gpu power level applied during startup autoconfiguration,
	// one of: low | medium | high
	Default string `json:"default"`
}

type PowerConfig struct {
	// AutoConfigure enables switching the fan profile on AC/battery transitions
	AutoConfigure bool `json:"autoConfigure"`
	// PollingRate is the interval at which the power source is sampled
	PollingRate time.Duration `json:"pollingRate"`
	// SupplyPath points at the sysfs "online" attribute of the AC adapter
	SupplyPath string `json:"supplyPath"`
}

type ProfilesConfig struct {
	// Default is the profile applied on full (mains) power
	Default string `json:"default"`
	// Alternate is the profile applied on battery power
	Alternate string `json:"alternate"`

	Definitions []FanProfileConfig `json:"definitions"`
}

type RunnerConfig struct {
	AdjustmentTickRate    time.Duration `json:"adjustmentTickRate"`
	TempRollingWindowSize int           `json:"tempRollingWindowSize"`
	TerminateTimeout      time.Duration `json:"terminateTimeout"`
}

var CurrentConfig Configuration

// InitConfig sets up the viper instance and default values.
func InitConfig(cfgFile string) {
	viper.SetConfigName("fanpilot")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/fanpilot/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbpath", "/etc/fanpilot/fanpilot.db")
	viper.SetDefault("statusFilePath", "/run/fanpilot/status")

	viper.SetDefault("api.enabled", true)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9401)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9400)

	viper.SetDefault("autoStart.enabled", false)
	viper.SetDefault("autoStart.taskId", "fanpilot")

	viper.SetDefault("gpuPower.default", "medium")

	viper.SetDefault("power.autoConfigure", true)
	viper.SetDefault("power.pollingRate", 1*time.Second)
	viper.SetDefault("power.supplyPath", "/sys/class/power_supply/AC/online")

	viper.SetDefault("profiles.default", "Silent")
	viper.SetDefault("profiles.alternate", "Silent")
	viper.SetDefault("profiles.definitions", []FanProfileConfig{})

	viper.SetDefault("hotkey.mode", string(HotkeyModeToggleWindow))

	viper.SetDefault("runner.adjustmentTickRate", 1*time.Second)
	viper.SetDefault("runner.tempRollingWindowSize", 10)
	viper.SetDefault("runner.terminateTimeout", 5*time.Second)
}

// DetectAndReadConfigFile reads the config file and returns its path.
func DetectAndReadConfigFile() string {
	err := viper.ReadInConfig()
	if err != nil {
		ui.Fatal("Error reading config file, %s", err)
	}
	return viper.ConfigFileUsed()
}

// GetFilePath returns the absolute path of the used configuration file.
func GetFilePath() string {
	path, err := filepath.Abs(viper.ConfigFileUsed())
	if err != nil {
		return viper.ConfigFileUsed()
	}
	return path
}

// LoadConfig decodes the configuration file into CurrentConfig.
func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			hotkeyModeHookFunc(),
		),
	))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}
