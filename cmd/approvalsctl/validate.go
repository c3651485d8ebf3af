package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"productapprovals/internal/approvals"
	"productapprovals/internal/config"
	"productapprovals/internal/logging"
	"productapprovals/internal/model"
	"productapprovals/internal/pipeline"
	"productapprovals/internal/presentation"
	"productapprovals/internal/service"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a product specification and company license",
	Long:  "Runs both uploads and every verification step against the approvals service, printing each result as it arrives.",
	RunE:  runValidate,
}

var (
	validateProduct string
	validateLicense string
	validateHost    string
)

var errRunFailed = errors.New("validation did not complete")

func init() {
	validateCmd.Flags().StringVarP(&validateProduct, "product", "p", "", "Path to the product specification CSV (required)")
	validateCmd.Flags().StringVarP(&validateLicense, "license", "l", "", "Path to the company license PDF (required)")
	validateCmd.Flags().StringVar(&validateHost, "host", "", "Approvals service URL (defaults to APPROVALS_HOST)")

	if err := validateCmd.MarkFlagRequired("product"); err != nil {
		panic(fmt.Sprintf("failed to mark product flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("license"); err != nil {
		panic(fmt.Sprintf("failed to mark license flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if validateHost != "" {
		cfg.Approvals.Host = strings.TrimRight(validateHost, "/")
	}

	product, err := readDocument(validateProduct)
	if err != nil {
		return err
	}
	license, err := readDocument(validateLicense)
	if err != nil {
		return err
	}

	// Results go to stdout, logs to stderr.
	log := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Log)
	client := approvals.New(cfg.Approvals, approvals.WithLogger(log))
	validator := service.NewValidator(pipeline.New(client), logging.Named(log, "validation"))

	run, err := validator.Validate(cmd.Context(), os.Getenv("USER"), pipeline.Input{Product: product, License: license},
		presentation.NewTextPresenter(cmd.OutOrStdout()))
	if err != nil {
		return fmt.Errorf("%w: %s failed", errRunFailed, run.FailedStep)
	}
	return nil
}

func readDocument(path string) (*model.UploadedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &model.UploadedDocument{
		Filename:    filepath.Base(path),
		ContentType: contentType(path),
		Data:        data,
	}, nil
}

func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
