package configure

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func checkErr(err error) {
	if err != nil {
		zap.S().Fatalw("config",
			"error", err,
		)
	}
}

func New() *Config {
	initLogging("info")

	config := viper.New()

	// Default config
	b, _ := json.Marshal(Config{
		Level:      "info",
		ConfigFile: "config.yaml",
		Convert: ConvertConfig{
			Format:      "both",
			WebpQuality: 80,
			AvifQuality: 50,
		},
		API:        BindConfig{Bind: "0.0.0.0:8080"},
		Health:     BindConfig{Bind: "0.0.0.0:9100"},
		Monitoring: MonitoringConfig{Bind: "0.0.0.0:9200"},
	})
	tmp := viper.New()
	defaultConfig := bytes.NewReader(b)
	tmp.SetConfigType("json")
	checkErr(tmp.ReadConfig(defaultConfig))
	checkErr(config.MergeConfigMap(tmp.AllSettings()))

	pflag.String("mode", "convert", "The running mode, `convert`, `mcp` or `serve`")
	pflag.String("config", "config.yaml", "Config file location")
	pflag.Bool("noheader", false, "Disable the startup header")
	pflag.String("level", "info", "Log level")

	pflag.String("input", "", "Input image file, or directory in batch mode")
	pflag.StringP("output", "o", "", "Output directory (default: alongside the input)")
	pflag.StringP("format", "f", "both", "Output format, `webp`, `avif` or `both`")
	pflag.IntP("quality", "q", 0, "Quality for both formats, 1-100 (overrides the per-format values)")
	pflag.Int("webp-quality", 80, "WebP quality, 1-100")
	pflag.Int("avif-quality", 50, "AVIF quality, 1-100")
	pflag.BoolP("lossless", "l", false, "Lossless WebP encoding")
	pflag.Int("max-width", 0, "Maximum output width, aspect ratio is preserved")
	pflag.Int("max-height", 0, "Maximum output height, aspect ratio is preserved")
	pflag.Bool("batch", false, "Convert every image in the input directory")
	pflag.IntP("workers", "w", 0, "Parallel workers in batch mode (default: CPU count)")
	pflag.StringP("preset", "p", "", "Apply a named preset")
	pflag.Bool("list-presets", false, "List the available presets and exit")
	pflag.BoolP("stats", "s", false, "Print compression statistics")

	pflag.Parse()

	checkErr(config.BindPFlag("mode", pflag.Lookup("mode")))
	checkErr(config.BindPFlag("config", pflag.Lookup("config")))
	checkErr(config.BindPFlag("noheader", pflag.Lookup("noheader")))
	checkErr(config.BindPFlag("level", pflag.Lookup("level")))

	checkErr(config.BindPFlag("convert.input", pflag.Lookup("input")))
	checkErr(config.BindPFlag("convert.output_dir", pflag.Lookup("output")))
	checkErr(config.BindPFlag("convert.format", pflag.Lookup("format")))
	checkErr(config.BindPFlag("convert.quality", pflag.Lookup("quality")))
	checkErr(config.BindPFlag("convert.webp_quality", pflag.Lookup("webp-quality")))
	checkErr(config.BindPFlag("convert.avif_quality", pflag.Lookup("avif-quality")))
	checkErr(config.BindPFlag("convert.lossless", pflag.Lookup("lossless")))
	checkErr(config.BindPFlag("convert.max_width", pflag.Lookup("max-width")))
	checkErr(config.BindPFlag("convert.max_height", pflag.Lookup("max-height")))
	checkErr(config.BindPFlag("convert.batch", pflag.Lookup("batch")))
	checkErr(config.BindPFlag("convert.workers", pflag.Lookup("workers")))
	checkErr(config.BindPFlag("convert.preset", pflag.Lookup("preset")))
	checkErr(config.BindPFlag("convert.list_presets", pflag.Lookup("list-presets")))
	checkErr(config.BindPFlag("convert.stats", pflag.Lookup("stats")))

	// File
	config.SetConfigFile(config.GetString("config"))
	config.AddConfigPath(".")
	if err := config.ReadInConfig(); err == nil {
		checkErr(config.MergeInConfig())
	}

	bindEnvs(config, Config{})

	// Environment
	config.AutomaticEnv()
	config.SetEnvPrefix("IC")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AllowEmptyEnv(true)

	c := &Config{}
	checkErr(config.Unmarshal(&c))

	initLogging(c.Level)

	return c
}

func bindEnvs(config *viper.Viper, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(config, v.Interface(), append(parts, tv)...)
		default:
			_ = config.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

type Config struct {
	Level      string `mapstructure:"level" json:"level"`
	ConfigFile string `mapstructure:"config" json:"config"`
	NoHeader   bool   `mapstructure:"noheader" json:"noheader"`
	Mode       string `mapstructure:"mode" json:"mode"`

	Convert ConvertConfig `mapstructure:"convert" json:"convert"`

	API        BindConfig       `mapstructure:"api" json:"api"`
	Health     BindConfig       `mapstructure:"health" json:"health"`
	Monitoring MonitoringConfig `mapstructure:"monitoring" json:"monitoring"`
}

type ConvertConfig struct {
	Input       string `mapstructure:"input" json:"input"`
	OutputDir   string `mapstructure:"output_dir" json:"output_dir"`
	Format      string `mapstructure:"format" json:"format"`
	Quality     int    `mapstructure:"quality" json:"quality"`
	WebpQuality int    `mapstructure:"webp_quality" json:"webp_quality"`
	AvifQuality int    `mapstructure:"avif_quality" json:"avif_quality"`
	Lossless    bool   `mapstructure:"lossless" json:"lossless"`
	MaxWidth    int    `mapstructure:"max_width" json:"max_width"`
	MaxHeight   int    `mapstructure:"max_height" json:"max_height"`
	Batch       bool   `mapstructure:"batch" json:"batch"`
	Workers     int    `mapstructure:"workers" json:"workers"`
	Preset      string `mapstructure:"preset" json:"preset"`
	ListPresets bool   `mapstructure:"list_presets" json:"list_presets"`
	Stats       bool   `mapstructure:"stats" json:"stats"`

	CleanupOnFailure bool `mapstructure:"cleanup_on_failure" json:"cleanup_on_failure"`
	MaxFileSize      int  `mapstructure:"max_file_size" json:"max_file_size"`
	MaxDimension     int  `mapstructure:"max_dimension" json:"max_dimension"`
}

type BindConfig struct {
	Bind    string `mapstructure:"bind" json:"bind"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

type MonitoringConfig struct {
	Bind    string `mapstructure:"bind" json:"bind"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Labels  Labels `mapstructure:"labels" json:"labels"`
}

type Labels []struct {
	Key   string `mapstructure:"key" json:"key"`
	Value string `mapstructure:"value" json:"value"`
}

func (l Labels) ToPrometheus() prometheus.Labels {
	mp := prometheus.Labels{}

	for _, v := range l {
		mp[v.Key] = v.Value
	}

	return mp
}
