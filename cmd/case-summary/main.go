package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"legaleagle-backend/app"
	"legaleagle-backend/config"
	"legaleagle-backend/logging"
	"legaleagle-backend/models"
	"legaleagle-backend/service"
)

const usage = `Usage:
  case-summary ask <question>
  case-summary search [-date YYYY-MM-DD] <query>
  case-summary summarize [-date YYYY-MM-DD] [-question text] <query>

Flags:
`

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var commands = map[string]bool{"ask": true, "search": true, "summarize": true}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code, so deferred
// cleanup always happens before the process exits
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("case-summary", flag.ContinueOnError)
	flags.SetOutput(stderr)
	date := flags.String("date", "", "only cases filed after this date (YYYY-MM-DD)")
	question := flags.String("question", "", "question placed ahead of the cases in the summary prompt")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	if flags.NArg() < 2 || !commands[flags.Arg(0)] {
		flags.Usage()
		return exitUsage
	}
	command := flags.Arg(0)
	input := strings.Join(flags.Args()[1:], " ")

	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return exitError
	}

	// Logs go to stderr so stdout carries only the JSON result
	logger := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		Output: stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return exitError
	}
	defer application.Close()

	query := models.SearchQuery{QueryString: input, StartDate: *date}

	var output any
	switch command {
	case "ask":
		output, err = application.Ask.Ask(ctx, input)

	case "search":
		output, err = application.Search.Search(ctx, query)

	case "summarize":
		var result *models.ResultSet
		result, err = application.Search.Search(ctx, query)
		if err == nil {
			if result.Len() == 0 {
				logger.Info().Msg("No cases found")
				return exitOK
			}
			prompt := service.BuildCasePrompt(*question, result.Records)
			output, err = application.Summary.Summarize(ctx, prompt)
		}
	}

	if err != nil {
		logger.Error().Err(err).Str("command", command).Msg("Command failed")
		return exitError
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		logger.Error().Err(err).Msg("Failed to write result")
		return exitError
	}

	return exitOK
}
