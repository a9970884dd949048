package cli

import (
	"fmt"

	"github.com/morozRed/crashid/internal/config"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crashid",
		Short: "Compute stable crash identifiers from Java and Android stack traces",
		Long: `crashid derives a {type, location} identifier from a crash and its
cause chain, so that the same crash groups together across app and OS
versions. Platform frames (android.*, dalvik.*, ...) are never chosen as
the crash origin and all out-of-memory crashes share one identifier.

Project settings are read from ` + config.FileName + ` when present.`,
		SilenceUsage:      true,
		PersistentPreRunE: configureLogging,
	}
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error (default $LOG_LEVEL or warn)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+config.FileName+" when present)")

	computeCmd := &cobra.Command{
		Use:   "compute [file|-]",
		Short: "Compute the crash identifier of one stack trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunCompute,
	}
	addIdentifierFlags(computeCmd)
	computeCmd.Flags().Bool("json", false, "Print machine-readable result")
	computeCmd.Flags().Bool("key", false, "Print only the grouping key")

	groupCmd := &cobra.Command{
		Use:   "group [path...]",
		Short: "Group stack trace files into crash buckets",
		RunE:  RunGroup,
	}
	addIdentifierFlags(groupCmd)
	groupCmd.Flags().String("store", "", "Bucket file (default from config, "+config.DefaultStore+")")
	groupCmd.Flags().Bool("save", false, "Merge results into the bucket file")
	groupCmd.Flags().Bool("json", false, "Print machine-readable summary")
	groupCmd.Flags().Bool("jsonl", false, "Print one JSON bucket per line")

	detectCmd := &cobra.Command{
		Use:   "detect [dir]",
		Short: "Detect the application package of a source tree",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunDetect,
	}
	detectCmd.Flags().Bool("json", false, "Print machine-readable result")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "crashid %s\n", version)
		},
	}

	rootCmd.AddCommand(
		computeCmd,
		groupCmd,
		detectCmd,
		versionCmd,
	)

	return rootCmd
}

func addIdentifierFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("package", "p", "", "Application package (default from config, source detection or the trace)")
	cmd.Flags().String("source", "", "Source tree to detect the application package from")
	cmd.Flags().String("format", "", "Trace format: text|json (default: detect)")
	cmd.Flags().StringSlice("skip", []string{}, "Additional package prefixes treated as platform code")
	cmd.Flags().Bool("no-default-skip", false, "Use only --skip prefixes, dropping the built-in platform list")
}
