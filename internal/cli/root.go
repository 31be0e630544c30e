package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/danieljhkim/simlist/internal/config"
	"github.com/danieljhkim/simlist/internal/logging"
)

// version is reported by --version and the version command.
var version = "dev"

var (
	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// app holds the state shared by one command tree.
type app struct {
	// v layers defaults, config file, environment and flags.
	v *viper.Viper

	jsonOutput bool
	configFile string

	// Populated by PersistentPreRunE.
	cfg    *config.Config
	logger *zap.Logger
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// customHelpFunc returns a custom help function that colors group titles
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")

		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	hasUngrouped := false
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && !c.Hidden {
			if !hasUngrouped {
				help.WriteString(sectionTitleColor.Sprint("Additional Commands:"))
				help.WriteString("\n")
				hasUngrouped = true
			}
			fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
		}
	}
	if hasUngrouped {
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	}

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

// bindFlag binds a flag to a config key, panicking on programmer error.
func (a *app) bindFlag(key string, cmd *cobra.Command, name string) {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(name)
	}
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
	}
}

// newRootCmd builds a fresh simlist command tree.
func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:     "simlist",
		Version: version,
		Short:   "Generate simulated image file lists from tract/visit overlaps",
		Long: `simlist selects the sensor-visits that overlap a set of sky tracts from a
tract2visit overlap database and turns them into simulated FITS file paths
ready for a DM repo ingest step.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetHelpFunc(customHelpFunc)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	pf.StringVar(&a.configFile, "config", "", "Path to a YAML config file")
	pf.Bool("verbose", false, "Enable debug logging")
	pf.StringP("overlaps-file", "o", config.DefaultDatabase, "Name of overlap db file")
	pf.StringP("prefix", "P", config.DefaultPrefix, "Path prefix to raw image files")
	pf.IntSliceP("tracts", "t", config.DefaultTracts, "Tracts of interest")
	pf.BoolP("plots", "p", false, "Show histograms")

	a.bindFlag(config.KeyVerbose, rootCmd, "verbose")
	a.bindFlag(config.KeyDatabase, rootCmd, "overlaps-file")
	a.bindFlag(config.KeyPrefix, rootCmd, "prefix")
	a.bindFlag(config.KeyTracts, rootCmd, "tracts")
	a.bindFlag(config.KeyPlots, rootCmd, "plots")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "reports",
		Title: "Reports:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cli-tooling",
		Title: "CLI & Tooling:",
	})

	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the simlist CLI version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Root().Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	completionCmd := &cobra.Command{
		Use:     "completion",
		Short:   "Generate the autocompletion script for the specified shell",
		GroupID: "cli-tooling",
		Long: `Generate the autocompletion script for simlist for the specified shell.
See each sub-command's help for details on how to use the generated script.`,
	}
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "bash",
		Short:                 "Generate the autocompletion script for bash",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenBashCompletion(os.Stdout)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "zsh",
		Short:                 "Generate the autocompletion script for zsh",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenZshCompletion(os.Stdout)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "fish",
		Short:                 "Generate the autocompletion script for fish",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenFishCompletion(os.Stdout, true)
		},
	})
	rootCmd.AddCommand(completionCmd)

	for _, cmd := range []*cobra.Command{a.newGenerateCmd(), a.newStatsCmd(), a.newDetectorCmd()} {
		cmd.GroupID = "reports"
		rootCmd.AddCommand(cmd)
	}

	return rootCmd
}

// load resolves the configuration and builds the logger for this run.
func (a *app) load() error {
	loaded, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = loaded

	l, err := logging.New(a.cfg.Verbose)
	if err != nil {
		return err
	}
	a.logger = l
	a.logger.Debug("Loaded configuration",
		zap.String("database", a.cfg.Database),
		zap.String("prefix", a.cfg.Prefix),
		zap.Ints("tracts", a.cfg.Tracts))
	return nil
}

// Execute executes the root command.
func Execute() error {
	return newRootCmd().Execute()
}
