// Package config loads the generator settings from defaults, an optional JSON file,
// a .env file, environment variables and command-line flags, in ascending priority,
// and validates the result.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every tunable of a generation run. By default a run fetches
// 100 German users, renders ten per page and writes into ./dist.
type Config struct {
	APIBaseURL         string        `env:"RANDOMUSER_API_URL" validate:"url"`
	ResultsCount       int           `env:"RESULTS_COUNT" validate:"min=1,max=5000"`
	Nationality        string        `env:"NATIONALITY" validate:"nationality"`
	PageSize           int           `env:"PAGE_SIZE" validate:"min=1"`
	OutputDir          string        `env:"OUTPUT_DIR" validate:"required,filepath"`
	SourceFile         string        `env:"USERS_SOURCE_FILE" validate:"omitempty,filepath"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel           string        `env:"LOG_LEVEL" validate:"loglevel"`
	PreviewAddr        string        `env:"PREVIEW_ADDRESS" validate:"omitempty,hostname_port"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ConfigFile         string        `env:"CONFIG"`
}

// fileConfig mirrors Config for the JSON file. Durations are written as strings ("30s").
type fileConfig struct {
	APIBaseURL         string   `json:"api_base_url"`
	ResultsCount       int      `json:"results_count"`
	Nationality        string   `json:"nationality"`
	PageSize           int      `json:"page_size"`
	OutputDir          string   `json:"output_dir"`
	SourceFile         string   `json:"source_file"`
	RequestTimeout     string   `json:"request_timeout"`
	LogLevel           string   `json:"log_level"`
	PreviewAddr        string   `json:"preview_address"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`
}

var defaultConfig = Config{
	APIBaseURL:         "https://randomuser.me",
	ResultsCount:       100,
	Nationality:        "de",
	PageSize:           10,
	OutputDir:          "dist",
	SourceFile:         "",
	RequestTimeout:     30 * time.Second,
	LogLevel:           "info",
	PreviewAddr:        "",
	CORSAllowedOrigins: []string{"*"},
}

// Nationalities accepted by the random-user API.
var nationalities = map[string]bool{
	"au": true, "br": true, "ca": true, "ch": true, "de": true, "dk": true, "es": true,
	"fi": true, "fr": true, "gb": true, "ie": true, "in": true, "ir": true, "mx": true,
	"nl": true, "no": true, "nz": true, "rs": true, "tr": true, "ua": true, "us": true,
}

var ErrInvalidConfigFile = errors.New("invalid config file")

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

// validateNationality accepts a single code or a comma separated list ("de,fr").
func validateNationality(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()
	if value == "" {
		return false
	}
	for _, code := range strings.Split(value, ",") {
		if !nationalities[strings.ToLower(strings.TrimSpace(code))] {
			return false
		}
	}

	return true
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("nationality", validateNationality)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// clarify normalizes values that several sources may spell differently.
func (c *Config) clarify() {
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")

	codes := strings.Split(c.Nationality, ",")
	for i, code := range codes {
		codes[i] = strings.ToLower(strings.TrimSpace(code))
	}
	c.Nationality = strings.Join(codes, ",")
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs replaces os.Args[1:] as the source of command-line flags.
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
	values.CORSAllowedOrigins = append([]string(nil), defaults.CORSAllowedOrigins...)
}

func applyOverrides(values *Config, overrides Config) {
	if overrides.APIBaseURL != "" {
		values.APIBaseURL = overrides.APIBaseURL
	}

	if overrides.ResultsCount != 0 {
		values.ResultsCount = overrides.ResultsCount
	}

	if overrides.Nationality != "" {
		values.Nationality = overrides.Nationality
	}

	if overrides.PageSize != 0 {
		values.PageSize = overrides.PageSize
	}

	if overrides.OutputDir != "" {
		values.OutputDir = overrides.OutputDir
	}

	if overrides.SourceFile != "" {
		values.SourceFile = overrides.SourceFile
	}

	if overrides.RequestTimeout != 0 {
		values.RequestTimeout = overrides.RequestTimeout
	}

	if overrides.LogLevel != "" {
		values.LogLevel = overrides.LogLevel
	}

	if overrides.PreviewAddr != "" {
		values.PreviewAddr = overrides.PreviewAddr
	}

	if len(overrides.CORSAllowedOrigins) > 0 {
		values.CORSAllowedOrigins = overrides.CORSAllowedOrigins
	}
}

func loadFile(fileName string) (Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, fmt.Errorf("in internal/config/config.go/loadFile(): error while reading %q: %w", fileName, err)
	}

	var fromFile fileConfig
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfigFile, fileName, err)
	}

	result := Config{
		APIBaseURL:         fromFile.APIBaseURL,
		ResultsCount:       fromFile.ResultsCount,
		Nationality:        fromFile.Nationality,
		PageSize:           fromFile.PageSize,
		OutputDir:          fromFile.OutputDir,
		SourceFile:         fromFile.SourceFile,
		LogLevel:           fromFile.LogLevel,
		PreviewAddr:        fromFile.PreviewAddr,
		CORSAllowedOrigins: fromFile.CORSAllowedOrigins,
	}
	if fromFile.RequestTimeout != "" {
		result.RequestTimeout, err = time.ParseDuration(fromFile.RequestTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: request_timeout: %v", ErrInvalidConfigFile, fileName, err)
		}
	}

	return result, nil
}

func parseFlags(args []string) (Config, error) {
	var fromFlags Config
	flags := flag.NewFlagSet("usersite", flag.ContinueOnError)
	flags.StringVar(&fromFlags.APIBaseURL, "u", "", "base URL of the random-user API")
	flags.IntVar(&fromFlags.ResultsCount, "n", 0, "number of users to fetch")
	flags.StringVar(&fromFlags.Nationality, "nat", "", "nationality filter, e.g. de or de,fr")
	flags.IntVar(&fromFlags.PageSize, "s", 0, "users per overview page")
	flags.StringVar(&fromFlags.OutputDir, "o", "", "output directory")
	flags.StringVar(&fromFlags.SourceFile, "i", "", "read users from this users.json instead of the API")
	flags.DurationVar(&fromFlags.RequestTimeout, "t", 0, "API request timeout")
	flags.StringVar(&fromFlags.LogLevel, "l", "", "logger level")
	flags.StringVar(&fromFlags.PreviewAddr, "p", "", "serve the output directory on this address after generation")
	flags.StringVar(&fromFlags.ConfigFile, "c", "", "JSON config file")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	return fromFlags, nil
}

// New builds the configuration. Priority: flags > env > JSON file > defaults.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	var valuesFromFlags Config
	if !options.disableFlagsParsing {
		valuesFromFlags, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	values.ConfigFile = valuesFromEnv.ConfigFile
	if valuesFromFlags.ConfigFile != "" {
		values.ConfigFile = valuesFromFlags.ConfigFile
	}

	if values.ConfigFile != "" {
		valuesFromFile, err := loadFile(values.ConfigFile)
		if err != nil {
			return nil, err
		}
		applyOverrides(values, valuesFromFile)
	}

	applyOverrides(values, valuesFromEnv)
	applyOverrides(values, valuesFromFlags)

	values.clarify()

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
