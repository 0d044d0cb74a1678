package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Filtering
	includeAll     bool
	maxSizeStr     string
	maxFileSizeStr string
	excludeList    []string

	// Output
	toStdout bool

	// Processing
	numThreads int
	verbose    bool
)

// version is the application version, set via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rcat [paths...]",
	Short: "Recursively concatenate files and copy to clipboard or output to stdout",
	Long: `rcat walks one or more directories breadth-first, concatenates every text
file it finds, and copies the result to the system clipboard (or writes it to
stdout with --stdout).

Hidden paths, gitignored paths, binary files and oversized files are skipped
by default; use --all to include them. Total output is capped so a stray
build tree cannot flood the clipboard.`,
	Version:      version,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().BoolVarP(&includeAll, "all", "a", false, "Include hidden paths, gitignored paths, and binary content")
	viper.BindPFlag("all", rootCmd.Flags().Lookup("all"))
	rootCmd.Flags().StringVarP(&maxSizeStr, "max-size", "m", "5MB", "Maximum total output size (e.g. 10MB, 1GB, 500KB)")
	viper.BindPFlag("max_size", rootCmd.Flags().Lookup("max-size"))
	rootCmd.Flags().StringVarP(&maxFileSizeStr, "max-file-size", "f", "500KB", "Skip files larger than this size (e.g. 500KB, 1MB)")
	viper.BindPFlag("max_file_size", rootCmd.Flags().Lookup("max-file-size"))
	rootCmd.Flags().StringArrayVarP(&excludeList, "exclude", "e", nil, "Exclude files matching pattern (can be used multiple times)")
	viper.BindPFlag("default_excludes", rootCmd.Flags().Lookup("exclude"))
	rootCmd.Flags().BoolVarP(&toStdout, "stdout", "o", false, "Write content to stdout instead of the clipboard")
	viper.BindPFlag("stdout", rootCmd.Flags().Lookup("stdout"))
	rootCmd.Flags().IntVarP(&numThreads, "threads", "t", 0, "Number of reader workers (0 for auto)")
	viper.BindPFlag("threads", rootCmd.Flags().Lookup("threads"))
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	viper.SetDefault("max_size", "5MB")
	viper.SetDefault("max_file_size", "500KB")
	viper.SetDefault("threads", 0)
	viper.SetDefault("all", false)
	viper.SetDefault("stdout", false)
}

// initConfig reads the config file and RCAT_* environment variables. Final
// precedence is flag > env > config file > default.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "rcat"))
	}
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("RCAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	if !rootCmd.Flags().Changed("max-size") {
		maxSizeStr = viper.GetString("max_size")
	}
	if !rootCmd.Flags().Changed("max-file-size") {
		maxFileSizeStr = viper.GetString("max_file_size")
	}
	if !rootCmd.Flags().Changed("exclude") {
		excludeList = viper.GetStringSlice("default_excludes")
	}
	if !rootCmd.Flags().Changed("threads") {
		numThreads = viper.GetInt("threads")
	}
	if !rootCmd.Flags().Changed("all") {
		includeAll = viper.GetBool("all")
	}
	if !rootCmd.Flags().Changed("stdout") {
		toStdout = viper.GetBool("stdout")
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := buildLogger(verbose)
	defer logger.Sync()
	log := logger.Sugar()

	if !isatty.IsTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}

	opts := defaultOptions()
	opts.includeAll = includeAll
	opts.excludes = excludeList
	opts.workers = numThreads

	var err error
	if opts.maxSize, err = parseSize(maxSizeStr); err != nil {
		return fmt.Errorf("invalid --max-size: %w", err)
	}
	if opts.maxFileSize, err = parseSize(maxFileSizeStr); err != nil {
		return fmt.Errorf("invalid --max-file-size: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	// Check the sink up front so a missing clipboard utility is reported
	// before any traversal work.
	if !toStdout {
		if err := validateClipboard(); err != nil {
			return err
		}
	}

	res, err := collect(paths, opts, log)
	if err != nil {
		return err
	}
	return deliver(res, opts, toStdout)
}

// deliver hands the assembled content to the selected sink and prints status
// and statistics on stderr, keeping stdout clean for piped content.
func deliver(res result, opts options, toStdout bool) error {
	size := int64(len(res.content))
	if size == 0 {
		if toStdout {
			fmt.Fprintln(os.Stderr, "No files found to output")
		} else {
			fmt.Fprintln(os.Stderr, "No files found to copy")
		}
		return nil
	}

	if toStdout {
		fmt.Print(res.content)
	} else if err := writeClipboard(res.content); err != nil {
		return err
	}

	if res.truncated {
		fmt.Fprintf(os.Stderr, "Content truncated at %s limit\n", formatAsUnit(opts.maxSize))
	}
	if toStdout {
		fmt.Fprintf(os.Stderr, "Successfully output %s to stdout\n", formatBytes(size))
	} else {
		fmt.Fprintf(os.Stderr, "Successfully copied %s to clipboard\n", formatBytes(size))
	}
	fmt.Fprintf(os.Stderr, "\n%s\n", res.stats.format())
	return nil
}

func buildLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
