package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"quiz-save/internal/adapter/page"
	"quiz-save/internal/adapter/saveclient"
	"quiz-save/internal/config"
	"quiz-save/internal/domain"
	"quiz-save/internal/logger"
	"quiz-save/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type submitOptions struct {
	configPath string
	pagePath   string
	outPath    string
	saveURL    string
	anchorID   string
	timeout    time.Duration
	selections []string
}

func newRootCmd() *cobra.Command {
	opts := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the answers selected on an answer page",
		Long: "submit reads the checked options of every configured question from an HTML answer page, " +
			"posts them to the save endpoint and writes the page back with the returned feedback inserted.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (defaults to ./config.yaml when present)")
	flags.StringVar(&opts.pagePath, "page", "", "HTML answer page to read")
	flags.StringVar(&opts.outPath, "out", "-", "Where to write the updated page (- for stdout)")
	flags.StringVar(&opts.saveURL, "url", "", "Save endpoint URL (overrides client.base_url + client.endpoint)")
	flags.StringVar(&opts.anchorID, "anchor", "", "Id of the element feedback is inserted before")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Request timeout (0 waits indefinitely)")
	flags.StringArrayVar(&opts.selections, "select", nil, "Check an option before submitting, as question=CODE (E clears the question)")
	_ = cmd.MarkFlagRequired("page")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfigFile(path)
	}
	return config.LoadConfig()
}

func runSubmit(cmd *cobra.Command, opts *submitOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return err
	}
	log := logger.Get()
	defer logger.Sync()

	questions, err := cfg.QuestionSet()
	if err != nil {
		return err
	}

	anchorID := cfg.Page.AnchorID
	if opts.anchorID != "" {
		anchorID = opts.anchorID
	}

	f, err := os.Open(opts.pagePath)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	doc, err := page.Parse(f, anchorID)
	f.Close()
	if err != nil {
		return err
	}

	if err := applySelections(doc, questions, opts.selections); err != nil {
		return err
	}

	controls, err := doc.Controls(questions)
	if err != nil {
		return err
	}
	collector, err := service.NewCollectorService(questions, controls)
	if err != nil {
		return err
	}

	saveURL := cfg.SaveURL()
	if opts.saveURL != "" {
		saveURL = opts.saveURL
	}
	timeout := cfg.Client.Timeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}
	client, err := saveclient.NewClient(saveURL, timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	outcome, err := service.NewSaveService(collector, client, doc).Save(cmd.Context())
	if err != nil {
		return err
	}

	log.Info("Submission complete",
		zap.String("submission_id", outcome.Result.SubmissionID),
		zap.Any("payload", outcome.Payload),
		zap.Bool("feedback_displayed", outcome.Displayed),
	)

	return writePage(cmd.OutOrStdout(), opts.outPath, doc)
}

// applySelections checks (or, for the no-selection code, clears) options
// named as question=CODE.
func applySelections(doc *page.Document, questions domain.QuestionSet, selections []string) error {
	for _, sel := range selections {
		key, code, ok := strings.Cut(sel, "=")
		if !ok {
			return domain.NewInvalidInputError(fmt.Sprintf("selection %q must look like question=CODE", sel))
		}
		code = strings.ToUpper(strings.TrimSpace(code))

		q, found := findQuestion(questions, strings.TrimSpace(key))
		if !found {
			return domain.NewInvalidInputError(fmt.Sprintf("unknown question %q", key))
		}

		if domain.OptionCode(code) == domain.NoSelection {
			for _, o := range q.Options {
				if err := doc.Uncheck(o.ElementID); err != nil {
					return err
				}
			}
			continue
		}

		matched := false
		for _, o := range q.Options {
			if string(o.Code) == code {
				if err := doc.Check(o.ElementID); err != nil {
					return err
				}
				matched = true
				break
			}
		}
		if !matched {
			return domain.NewInvalidInputError(fmt.Sprintf("question %q has no option %q", q.Key, code))
		}
	}
	return nil
}

func findQuestion(questions domain.QuestionSet, key string) (domain.Question, bool) {
	for _, q := range questions {
		if q.Key == key {
			return q, true
		}
	}
	return domain.Question{}, false
}

func writePage(stdout io.Writer, path string, doc *page.Document) error {
	if path == "" || path == "-" {
		return doc.Render(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := doc.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
