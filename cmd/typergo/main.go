package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/codellm-devkit/typergo/internal/frontend"
	"github.com/codellm-devkit/typergo/internal/oracle"
	"github.com/codellm-devkit/typergo/internal/typer"
)

const version = "1.0.0"

var (
	// Flag del run
	modeFlag    string
	showSucc    bool
	noSpec      bool
	edoc        bool
	macros      []string
	includes    []string
	trusted     []string
	recursive   []string
	pltPath     string
	ignoreFile  string
	configPath  string
	verbose     bool
	showVersion bool

	logger *zap.Logger
)

// errConfig marca gli errori di configurazione (exit code 2).
var errConfig = errors.New("configuration error")

var rootCmd = &cobra.Command{
	Use:   "typergo [files...]",
	Short: "typergo annota sorgenti Go con l'informazione di tipo inferita",
	Long: `typergo shows or injects inferred type information into Go source
files, driven by a pre-computed per-function type table.

Show modes print formatted type lines to stdout; annotate modes rewrite the
sources, either in place or under a typer_ann/ sibling directory.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runTyper,
}

func init() {
	rootCmd.Flags().StringVar(&modeFlag, "mode", "show", "Run mode: show|show_exported|annotate|annotate_in_place|annotate_inc_files")
	rootCmd.Flags().BoolVar(&showSucc, "show-succ", false, "Bypass contract validation, print the raw inferred signature")
	rootCmd.Flags().BoolVar(&noSpec, "no-spec", false, "Skip declared-contract ingestion")
	rootCmd.Flags().BoolVar(&edoc, "edoc", false, "Use documentation-comment annotation syntax")
	rootCmd.Flags().StringArrayVarP(&macros, "define", "D", nil, "Preprocessor symbol definition name[=value], forwarded to the front-end")
	rootCmd.Flags().StringArrayVarP(&includes, "include", "I", nil, "Additional search directory, forwarded to the front-end")
	rootCmd.Flags().StringArrayVar(&trusted, "trusted", nil, "Extra type-table file pre-seeded before the main analysis")
	rootCmd.Flags().StringArrayVarP(&recursive, "recursive", "r", nil, "Directory to scan recursively")
	rootCmd.Flags().StringVar(&pltPath, "plt", "", "Path to the persisted type table")
	rootCmd.Flags().StringVar(&ignoreFile, "ignore", "", "Gitignore-syntax file vetoing discovered sources")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML file carrying the same run options")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[error] %v\n", err)
		if errors.Is(err, errConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// fileConfig rispecchia le opzioni del run in un file YAML opzionale.
type fileConfig struct {
	Mode     string            `yaml:"mode"`
	ShowSucc bool              `yaml:"show_succ"`
	NoSpec   bool              `yaml:"no_spec"`
	EDoc     bool              `yaml:"edoc"`
	Macros   map[string]string `yaml:"macros"`
	Includes []string          `yaml:"includes"`
	Trusted  []string          `yaml:"trusted"`
	Files    []string          `yaml:"files"`
	FilesR   []string          `yaml:"files_r"`
	PLT      string            `yaml:"plt"`
	Ignore   string            `yaml:"ignore"`
}

func runTyper(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Printf("typergo %s\n", version)
		return nil
	}

	cfg, trustedFiles, plt, err := buildConfig(cmd, args)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	orc, err := oracle.LoadPLT(plt, trustedFiles)
	if err != nil {
		return err
	}

	runner := typer.New(cfg, frontend.NewGoFrontEnd(), orc, logger, os.Stdout)
	return runner.Run()
}

// buildConfig fonde file YAML e flag (i flag espliciti vincono) e valida.
func buildConfig(cmd *cobra.Command, args []string) (typer.Config, []string, string, error) {
	var fc fileConfig
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return typer.Config{}, nil, "", fmt.Errorf("read config %s: %v", configPath, err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return typer.Config{}, nil, "", fmt.Errorf("decode config %s: %v", configPath, err)
		}
	}

	modeName := modeFlag
	if !cmd.Flags().Changed("mode") && fc.Mode != "" {
		modeName = fc.Mode
	}
	mode, err := typer.ParseMode(modeName)
	if err != nil {
		return typer.Config{}, nil, "", err
	}

	cfg := typer.Config{
		Mode:       mode,
		ShowSucc:   showSucc || fc.ShowSucc,
		NoSpec:     noSpec || fc.NoSpec,
		EDoc:       edoc || fc.EDoc,
		Macros:     parseMacros(macros, fc.Macros),
		Includes:   append(append([]string{}, fc.Includes...), includes...),
		Files:      append(append([]string{}, fc.Files...), args...),
		Recursive:  append(append([]string{}, fc.FilesR...), recursive...),
		IgnoreFile: firstNonEmpty(ignoreFile, fc.Ignore),
	}

	if len(cfg.Files) == 0 && len(cfg.Recursive) == 0 {
		return typer.Config{}, nil, "", fmt.Errorf("no files or directories to analyze")
	}

	plt := firstNonEmpty(pltPath, fc.PLT)
	if plt == "" {
		return typer.Config{}, nil, "", fmt.Errorf("type table path required (--plt)")
	}

	allTrusted := append(append([]string{}, fc.Trusted...), trusted...)
	return cfg, allTrusted, plt, nil
}

// parseMacros interpreta le definizioni "name" o "name=value".
func parseMacros(defs []string, base map[string]string) map[string]string {
	out := make(map[string]string, len(defs)+len(base))
	for name, value := range base {
		out[name] = value
	}
	for _, d := range defs {
		name, value, _ := strings.Cut(d, "=")
		out[name] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
