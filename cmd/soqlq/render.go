package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/nao1215/soqlq/internal/log"
	"github.com/nao1215/soqlq/internal/model"
	"github.com/spf13/cobra"
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <saved-result.json>",
		Short: "Render a saved query result",
		Long: `Render prints a result saved with "soqlq query --save-output" in any
result format, without contacting the org.

Examples:
  # Save once, render as CSV later
  soqlq query -q "SELECT Name, Owner.Name FROM Account" --save-output accounts.json
  soqlq render -r csv accounts.json

  # Render as Markdown into a file
  soqlq render -r markdown -o accounts.md accounts.json`,
		Args: cobra.ExactArgs(1),
		RunE: runRenderCmd,
	}

	cmd.Flags().StringP("result-format", "r", model.ResultFormatHuman.String(),
		"Result format: "+strings.Join(formatNames(), ", "))
	cmd.Flags().BoolP("json", "j", false, "Print the JSON envelope")
	cmd.Flags().StringP("output", "o", "", "Write the rendered result to a file")

	return cmd
}

// runRenderCmd executes the render command.
func runRenderCmd(cmd *cobra.Command, args []string) error {
	name, err := cmd.Flags().GetString("result-format")
	if err != nil {
		return err
	}
	format, err := model.ParseResultFormat(name)
	if err != nil {
		return fmt.Errorf("configuration error: %w (valid formats: %s)", err, strings.Join(formatNames(), ", "))
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if asJSON {
		format = model.ResultFormatJSON
	}

	outputFile, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	saved, err := loadOutput(args[0])
	if err != nil {
		return err
	}

	if outputFile == "" {
		return renderOutput(cmd.OutOrStdout(), format, saved, logger, !color.NoColor)
	}

	f, err := createFile(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return renderOutput(f, format, saved, logger, false)
}
