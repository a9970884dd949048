package cli

import (
	"fmt"
	"path/filepath"

	"github.com/morozRed/crashid/internal/appid"
	"github.com/morozRed/crashid/internal/fileutil"
	"github.com/spf13/cobra"
)

func RunDetect(cmd *cobra.Command, args []string) error {
	settings, err := LoadSettings(cmd)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	dir := settings.RootPath
	if len(args) > 0 {
		dir = args[0]
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(settings.RootPath, dir)
		}
	}

	result, err := appid.Detect(dir, settings.IgnoreRules)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, result)
	}

	fmt.Fprintf(out, "package: %s\n", result.Package)
	fmt.Fprintf(out, "source:  %s", result.Source)
	if result.Evidence != "" {
		fmt.Fprintf(out, " (%s)", result.Evidence)
	}
	fmt.Fprintln(out)
	_, err = fmt.Fprintf(out, "scanned: %d files, %d types, %d packages\n", result.Files, result.Types, len(result.Packages))
	return err
}
