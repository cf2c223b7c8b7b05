package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"musicstats/internal/config"
)

// errHelp and errInitConfig end argument parsing without running.
var (
	errHelp       = errors.New("help requested")
	errInitConfig = errors.New("init config requested")
)

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > config file > environment > defaults
func parseArgs(args []string) (config.Config, string, error) {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return config.Config{}, "", errHelp
		}
		if arg == "--init-config" {
			return config.Config{}, "", errInitConfig
		}
	}

	var configPath string
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			break
		}
	}

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	value := func(i int, flag, what string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires %s", flag, what)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true

		case "--enrich-tags", "-e":
			cfg.EnrichTags = true

		case "--since", "-s":
			v, err := value(i, arg, "a date (YYYY-MM-DD)")
			if err != nil {
				return config.Config{}, "", err
			}
			i++
			cfg.Since = v

		case "--until", "-u":
			v, err := value(i, arg, "a date (YYYY-MM-DD)")
			if err != nil {
				return config.Config{}, "", err
			}
			i++
			cfg.Until = v

		case "--top", "-t":
			v, err := value(i, arg, "a number argument")
			if err != nil {
				return config.Config{}, "", err
			}
			i++
			n, err := strconv.Atoi(v)
			if err != nil {
				return config.Config{}, "", fmt.Errorf("invalid top value: %s", v)
			}
			cfg.Top = n

		case "--format", "-f":
			v, err := value(i, arg, "a format name")
			if err != nil {
				return config.Config{}, "", err
			}
			i++
			cfg.Format = v

		case "--config", "-c":
			i++

		default:
			if len(arg) > 0 && arg[0] == '-' {
				return config.Config{}, "", fmt.Errorf("unknown flag: %s", arg)
			}
			cfg.LibraryPath = config.ExpandHome(arg)
		}
	}

	return cfg, configPath, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile(out io.Writer) error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "Config file already exists at: %s\n", path)
		fmt.Fprintln(out, "Delete it first if you want to recreate it.")
		return nil
	}

	cfg := config.DefaultConfig()

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(out, "Created default config file at: %s\n", path)
	fmt.Fprintln(out, "\nYou can now edit this file to customize your settings.")
	fmt.Fprintln(out, "Available options:")
	fmt.Fprintln(out, "  library_path: path to the exported Library.xml")
	fmt.Fprintln(out, "  since / until: YYYY-MM-DD range on \"Date Added\"")
	fmt.Fprintln(out, "  top: number of genres and artists to show (0 = all)")
	fmt.Fprintln(out, "  format: text or json")
	fmt.Fprintln(out, "  enrich_tags: true/false (read missing genre/artist from files)")
	fmt.Fprintln(out, "  verbose: true/false (enable detailed logging)")
	return nil
}

// printUsage displays the help message
func printUsage(out io.Writer) {
	fmt.Fprintln(out, "musicstats - Play counts by genre and artist from a music library export")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: musicstats [options] [library.xml]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	fmt.Fprintln(out, "  -s, --since <date>         Only tracks added on or after this date (YYYY-MM-DD)")
	fmt.Fprintln(out, "  -u, --until <date>         Only tracks added on or before this date (default: now)")
	fmt.Fprintln(out, "  -t, --top <n>              Show the top n genres and artists (default: 18, 0 = all)")
	fmt.Fprintln(out, "  -f, --format <format>      Output format: text or json (default: text)")
	fmt.Fprintln(out, "  -e, --enrich-tags          Read missing genre/artist from the audio files")
	fmt.Fprintln(out, "  -v, --verbose              Show detailed output")
	fmt.Fprintln(out, "  -c, --config <path>        Path to config file")
	fmt.Fprintln(out, "  -h, --help                 Show this help message")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, "  --init-config              Create a default config file")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Config file locations (checked in order):")
	fmt.Fprintln(out, "  ./musicstats.yaml")
	fmt.Fprintln(out, "  ~/.config/musicstats/config.yaml")
	fmt.Fprintln(out, "  ~/.musicstats.yaml")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment:")
	fmt.Fprintln(out, "  MUSICSTATS_* variables (e.g. MUSICSTATS_TOP=10) and a ./.env file")
	fmt.Fprintln(out, "  override defaults; the config file and flags override them.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  # Everything added since the start of 2021")
	fmt.Fprintln(out, "  musicstats --since 2021-01-01 ~/Music/Library.xml")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  # Top 10 for a single year as JSON")
	fmt.Fprintln(out, "  musicstats -s 2021-01-01 -u 2021-12-31 -t 10 -f json")
}
