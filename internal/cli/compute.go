package cli

import (
	"fmt"
	"io"

	"github.com/bdlm/log"
	"github.com/morozRed/crashid/internal/crashid"
	"github.com/morozRed/crashid/internal/fileutil"
	"github.com/morozRed/crashid/internal/trace"
	"github.com/spf13/cobra"
)

type ComputeSummary struct {
	Input      string             `json:"input"`
	Format     string             `json:"format,omitempty"`
	Package    string             `json:"package,omitempty"`
	Thread     string             `json:"thread,omitempty"`
	Causes     int                `json:"causes"`
	Identifier crashid.Identifier `json:"identifier"`
}

func RunCompute(cmd *cobra.Command, args []string) error {
	settings, err := LoadSettings(cmd)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	keyOnly, err := OptionalBoolFlag(cmd, "key")
	if err != nil {
		return err
	}

	input := "-"
	if len(args) > 0 {
		input = args[0]
	}

	registry := trace.NewDefaultRegistry()
	var parsed *trace.Trace
	if input == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		parsed, err = registry.Parse(settings.Format, content)
		if err != nil {
			return fmt.Errorf("failed to parse stdin: %w", err)
		}
	} else {
		parsed, err = registry.ParseFile(input, settings.Format)
		if err != nil {
			return err
		}
	}

	pkg := settings.ResolvePackage(parsed.Package)
	id := crashid.NewComputer(settings.Skip).Compute(pkg, parsed.Throwable)
	log.WithField("input", input).Debugf("computed %s", id)

	out := cmd.OutOrStdout()
	switch {
	case keyOnly:
		_, err = fmt.Fprintln(out, id.Key())
		return err
	case asJSON:
		return fileutil.PrintJSON(out, ComputeSummary{
			Input:      input,
			Format:     settings.Format,
			Package:    pkg,
			Thread:     parsed.Thread,
			Causes:     parsed.Depth(),
			Identifier: id,
		})
	default:
		return PrintIdentifier(out, id)
	}
}

func PrintIdentifier(w io.Writer, id crashid.Identifier) error {
	location := id.Location
	if !id.HasLocation() {
		location = "-"
	}
	_, err := fmt.Fprintf(w, "type:     %s\nlocation: %s\nkey:      %s\n", id.Type, location, id.Key())
	return err
}
