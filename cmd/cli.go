// SPDX-License-Identifier: MIT
package cmd

import (
	"freqlab/internal/config"
	"freqlab/internal/synth"
	"freqlab/pkg/build"

	"github.com/spf13/cobra"
)

// Commands selected by ParseArgs.
const (
	CommandEdit  = "edit"
	CommandApply = "apply"
	CommandNoise = "noise"
)

// Options is the parsed command line. Command is empty when cobra handled
// the invocation itself (help, version).
type Options struct {
	Command    string
	ConfigFile string
	Image      string
	Script     string

	// Overrides for the loaded configuration; empty means keep.
	Policy    string
	Mode      string
	Scaling   string
	OutputDir string
	Verbose   bool

	// noise command
	Offsets          string
	Strength         float64
	RippleStrength   float64
	RippleWavelength float64
}

// ParseArgs parses args (without the program name).
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name + " <image>",
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandEdit
			options.Image = args[0]
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Apply command
	applyCmd := &cobra.Command{
		Use:   "apply <image> <script.yaml>",
		Short: "Replay an edit script against an image and save the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandApply
			options.Image = args[0]
			options.Script = args[1]
			return nil
		},
	}
	rootCmd.AddCommand(applyCmd)

	// Noise command
	noiseCmd := &cobra.Command{
		Use:   "noise <image>",
		Short: "Add periodic noise and radial ripple to an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandNoise
			options.Image = args[0]
			return nil
		},
	}
	noiseCmd.Flags().StringVar(&options.Offsets, "offsets", "",
		"Spike offsets from the zero-frequency bin as 'r,c; r,c'")
	noiseCmd.Flags().Float64Var(&options.Strength, "strength", synth.DefaultPeriodicStrength,
		"Spike magnitude as a multiple of the mean spectral magnitude")
	noiseCmd.Flags().Float64Var(&options.RippleStrength, "ripple-strength", synth.DefaultRippleStrength,
		"Depth of the radial ripple gain")
	noiseCmd.Flags().Float64Var(&options.RippleWavelength, "wavelength", synth.DefaultRippleWavelength,
		"Ripple wavelength in bins")
	rootCmd.AddCommand(noiseCmd)

	// Session configuration
	rootCmd.PersistentFlags().StringVarP(&options.ConfigFile, "config", "f", "",
		"Path to a YAML config file. Defaults to "+config.DefaultConfigFile+" when present")
	rootCmd.PersistentFlags().StringVarP(&options.Policy, "policy", "p", "",
		"Recompute queue policy (fifo, latest)")
	rootCmd.PersistentFlags().StringVarP(&options.Mode, "mode", "m", "",
		"Result mode (magnitude, real)")
	rootCmd.PersistentFlags().StringVarP(&options.Scaling, "scaling", "s", "",
		"Export scaling (clip, normalize)")
	rootCmd.PersistentFlags().StringVarP(&options.OutputDir, "output", "o", "",
		"Directory for saved images")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show debug output")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

// Override writes the flags that were set over cfg and re-validates it.
func (o *Options) Override(cfg *config.Config) error {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Pipeline.Policy, o.Policy)
	set(&cfg.Pipeline.Mode, o.Mode)
	set(&cfg.Pipeline.Scaling, o.Scaling)
	set(&cfg.Export.OutputDir, o.OutputDir)
	if o.Verbose {
		cfg.Debug = true
	}
	return cfg.Validate()
}
