// ffclip/config/config.go
package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	FFBin            string        `mapstructure:"FF_BIN"`
	FFProbeBin       string        `mapstructure:"FFPROBE_BIN"`
	FFTimeout        time.Duration `mapstructure:"FF_TIMEOUT"`
	MaxInputSize     int64         `mapstructure:"MAX_INPUT_SIZE"`
	MaxConcurrency   int           `mapstructure:"MAX_CONCURRENCY"`
	AbortGrace       time.Duration `mapstructure:"ABORT_GRACE"`
	SegmentPause     time.Duration `mapstructure:"SEGMENT_PAUSE"`
	CleanupSchedule  string        `mapstructure:"CLEANUP_SCHEDULE"`
	EventBuffer      int           `mapstructure:"EVENT_BUFFER"`
	ThrottleEnable   bool          `mapstructure:"THROTTLE_ENABLE"`
	ThrottleCPU      float64       `mapstructure:"THROTTLE_CPU"`
	ThrottleFreeMem  int64         `mapstructure:"THROTTLE_FREEMEM"`
	ThrottleFreeDisk int64         `mapstructure:"THROTTLE_FREEDISK"`
	AuthEnable       bool          `mapstructure:"AUTH_ENABLE"`
	AuthKey          string        `mapstructure:"AUTH_KEY"`
	Port             string        `mapstructure:"PORT"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	LogFormat        string        `mapstructure:"LOG_FORMAT"`
}

// stringToDurationHookFunc is a custom Viper hook for parsing Go's duration strings.
func stringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		return time.ParseDuration(data.(string))
	}
}

// stringToByteSizeHookFunc is a custom Viper hook for parsing human-readable size strings.
func stringToByteSizeHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Int64 {
			return data, nil
		}

		var size datasize.ByteSize
		err := size.UnmarshalText([]byte(data.(string)))
		if err != nil {
			// Not a valid size string, let other parsers handle it.
			return data, nil
		}

		return int64(size.Bytes()), nil
	}
}

// Load reads defaults, then the YAML config file (configFile when set, otherwise
// ffclip_config.yaml from the search paths), then FFCLIP_* environment variables.
func Load(configFile string) (*Config, error) {
	vp := viper.New()

	vp.SetDefault("FF_BIN", "ffmpeg")
	vp.SetDefault("FFPROBE_BIN", "ffprobe")
	vp.SetDefault("FF_TIMEOUT", "0s")
	vp.SetDefault("MAX_INPUT_SIZE", "10GB")
	vp.SetDefault("MAX_CONCURRENCY", 3)
	vp.SetDefault("ABORT_GRACE", "5s")
	vp.SetDefault("SEGMENT_PAUSE", "100ms")
	vp.SetDefault("CLEANUP_SCHEDULE", "")
	vp.SetDefault("EVENT_BUFFER", 64)
	vp.SetDefault("THROTTLE_ENABLE", true)
	vp.SetDefault("THROTTLE_CPU", 50.0)
	vp.SetDefault("THROTTLE_FREEMEM", "200MB")
	vp.SetDefault("THROTTLE_FREEDISK", "200MB")
	vp.SetDefault("AUTH_ENABLE", false)
	vp.SetDefault("AUTH_KEY", "123456")
	vp.SetDefault("PORT", "8080")
	vp.SetDefault("CORS_ORIGINS", "")
	vp.SetDefault("LOG_LEVEL", "info")
	vp.SetDefault("LOG_FORMAT", "console")

	if configFile != "" {
		vp.SetConfigFile(configFile)
	} else {
		vp.SetConfigName("ffclip_config")
		vp.SetConfigType("yaml")
		vp.AddConfigPath(".")
		vp.AddConfigPath("/etc/ffclip/")
	}

	if err := vp.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	vp.SetEnvPrefix("FFCLIP")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	var cfg Config
	// The order matters: the first hook that succeeds is used.
	err := vp.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			stringToDurationHookFunc(),
			stringToByteSizeHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	return &cfg, nil
}
