package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	isoanalyzer "github.com/menta2k/iso-analyzer"
	"github.com/menta2k/iso-analyzer/internal/config"
	"github.com/menta2k/iso-analyzer/internal/utils"
	"github.com/menta2k/iso-analyzer/pkg/analyzer"
	"github.com/menta2k/iso-analyzer/pkg/report"
	"github.com/menta2k/iso-analyzer/pkg/types"
)

type options struct {
	mode          string
	alphaThresh   int
	overrideSkirt int
	jsonOut       bool
	configPath    string
	keepGoing     bool
	verbose       bool
}

const usageExample = `  iso-analyzer --mode floor tile.png
  cat wall.webp | iso-analyzer --mode wall --json -`

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "iso-analyzer [flags] image...",
		Short: "Analyze isometric sprites: opaque bbox + floor contact estimate",
		Long: `iso-analyzer measures isometric sprite images for tile placement.

For each image it reports the opaque bounding box, a heuristic floor-contact
line with the skirt below it, and, in floor or wall mode, the derived tile
constants. The contact line is an estimate; verify it visually.`,
		Example:       usageExample,
		Args:          cobra.MinimumNArgs(1),
		Version:       isoanalyzer.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.mode, "mode", string(types.ModeAuto), "asset type hint for constants: auto|floor|wall")
	flags.IntVar(&opts.alphaThresh, "alpha-thresh", 0, "alpha threshold; pixels with alpha above it are opaque")
	flags.IntVar(&opts.overrideSkirt, "override-skirt", 0, "force the skirt in px used by floor/wall constants (e.g. 16)")
	flags.BoolVar(&opts.jsonOut, "json", false, "emit JSON instead of text")
	flags.StringVar(&opts.configPath, "config", "", "JSON config file with defaults and detection tuning (default "+config.GetConfigPath()+" if present)")
	flags.BoolVar(&opts.keepGoing, "keep-going", false, "report unreadable files as error results instead of aborting")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	return cmd
}

func run(cmd *cobra.Command, opts options, paths []string) error {
	cfg := config.Default()
	configPath := opts.configPath
	if configPath == "" && utils.FileExists(config.GetConfigPath()) {
		configPath = config.GetConfigPath()
	}
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	flags := cmd.Flags()

	mode := cfg.Mode()
	if flags.Changed("mode") {
		m, err := types.ParseMode(opts.mode)
		if err != nil {
			return err
		}
		mode = m
	}

	analyzerConfig := analyzer.Config{
		Mode:           mode,
		AlphaThreshold: cfg.Analyzer.AlphaThreshold,
	}
	if flags.Changed("alpha-thresh") {
		analyzerConfig.AlphaThreshold = opts.alphaThresh
	}
	if flags.Changed("override-skirt") {
		skirt := opts.overrideSkirt
		analyzerConfig.OverrideSkirt = &skirt
	}

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		format = report.FormatJSON
	}

	logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)

	ia := isoanalyzer.NewWithConfig(analyzerConfig, cfg.DetectionConfig())
	ia.KeepGoing = opts.keepGoing
	ia.Stdin = cmd.InOrStdin()
	if opts.verbose {
		ia.DebugPrint = func(message string) { logger.Print(message) }
		logger.Printf("mode=%s alpha-thresh=%d files=%d", mode, analyzerConfig.AlphaThreshold, len(paths))
	}

	results, analyzeErr := ia.AnalyzeFiles(paths)
	if results == nil && analyzeErr != nil {
		return analyzeErr
	}

	w := report.NewWriter(format)
	if cfg.Output.Indent != "" {
		w.Indent = cfg.Output.Indent
	}
	if err := w.Write(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	return analyzeErr
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
