package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/testdrive/adocreport/pkg/config"
	"github.com/testdrive/adocreport/pkg/fsutil"
	"github.com/testdrive/adocreport/pkg/ingest"
	"github.com/testdrive/adocreport/pkg/render"
	"github.com/testdrive/adocreport/pkg/report"
)

var (
	reportTitle string
	assetsDir   string
	cfgFile     string
	junitFiles  []string
	outputPath  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render an AsciiDoc report from test records",
	Long: `Read JSON-line test records from stdin, merge optional JUnit XML
result files, and render the AsciiDoc report to stdout or a file.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&reportTitle, "title", "Test Report",
		"Report title heading")
	generateCmd.Flags().StringVar(&assetsDir, "assets-dir", "",
		"Directory to stage image assets referenced by case details")
	generateCmd.Flags().StringVar(&cfgFile, "config", "",
		"Run-configuration file carrying build metadata (JSON or YAML)")
	generateCmd.Flags().StringSliceVar(&junitFiles, "junit", nil,
		"JUnit XML result file to merge (can be repeated)")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Output file path (default stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	run := report.NewRun()

	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		run.GitHash = cfg.GitHash
		run.Labels = cfg.Labels
	}

	// The stream is ingested fully before any secondary file so that
	// secondary records win when both describe the same case.
	if err := ingest.ReadStream(log, cmd.InOrStdin(), run); err != nil {
		return fmt.Errorf("ingesting record stream: %w", err)
	}

	for _, path := range junitFiles {
		if err := ingest.ReadJUnit(log, path, run); err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
	}

	run.Aggregate()

	log.WithFields(logrus.Fields{
		"suites": len(run.Suites),
		"cases":  run.Total(),
	}).Info("Rendering report")

	// Render to a string first: a failed render writes nothing to the sink.
	doc, err := render.Document(run, render.Options{
		Title:     reportTitle,
		AssetsDir: assetsDir,
	})
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	return fsutil.WriteDocument(outputPath, doc)
}
