package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/nao1215/soqlq/internal/config"
	"github.com/nao1215/soqlq/internal/database"
	"github.com/nao1215/soqlq/internal/log"
	"github.com/nao1215/soqlq/internal/model"
	"github.com/nao1215/soqlq/internal/pipeline"
	"github.com/nao1215/soqlq/internal/transport"
	"github.com/spf13/cobra"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a SOQL query and render the records",
		Long: `Query runs one or more SOQL queries and renders their records.

Every page of the result is fetched before rendering. Columns are described
by the REST API and classified so that parent relationships, subqueries and
aggregate functions are rendered as readable columns.

Examples:
  # Print accounts as a table
  soqlq query -q "SELECT Id, Name FROM Account LIMIT 10"

  # Subquery rows as CSV
  soqlq query -q "SELECT Name, (SELECT LastName FROM Contacts) FROM Account" -r csv

  # JSON envelope for scripts
  soqlq query -q "SELECT COUNT(Id) FROM Lead GROUP BY LeadSource" --json

  # Query the tooling API of the org "prod" from the config file
  soqlq query --org prod -t -q "SELECT Id, Name FROM ApexClass"

  # Run every query of a file, four at a time
  soqlq query --file reports.soql --batch 4 -o reports.txt

  # Keep the result to re-render it later with "soqlq render"
  soqlq query -q "SELECT Id FROM Case" --save-output cases.json`,
		Args: cobra.NoArgs,
		RunE: runQueryCmd,
	}

	cmd.Flags().StringP("query", "q", "", "SOQL query to run")
	cmd.Flags().String("file", "", "File with SOQL queries separated by ';'")
	cmd.Flags().StringP("result-format", "r", "",
		"Result format: "+strings.Join(formatNames(), ", ")+" (default human)")
	cmd.Flags().BoolP("json", "j", false, "Print the JSON envelope")
	cmd.Flags().BoolP("use-tooling-api", "t", false, "Send the query to the tooling API")
	cmd.Flags().StringP("output", "o", "", "Write the rendered result to a file")
	cmd.Flags().String("save-output", "", "Write the JSON result to a file for \"soqlq render\"")

	cmd.Flags().String("org", "", "Org alias from the configuration file")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .soqlq in current or home directory)")
	cmd.Flags().String("instance-url", "", "Instance URL of the org, e.g. https://example.my.salesforce.com")
	cmd.Flags().String("api-version", "", "REST API version (default "+config.DefaultAPIVersion+")")
	cmd.Flags().String("proxy", "", "SOCKS5 proxy address (host:port)")

	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Timeout for each HTTP request")
	cmd.Flags().Int("max-fetch", config.DefaultMaxFetch, "Maximum number of records fetched per query")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of queries from --file run concurrently")
	cmd.Flags().Bool("no-history", false, "Do not record executions in the history database")

	cmd.MarkFlagsMutuallyExclusive("query", "file")

	return cmd
}

func formatNames() []string {
	formats := model.ResultFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.String()
	}
	return names
}

// runQueryCmd executes the query command.
func runQueryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.ProxyAddress != "" {
		if status := client.CheckProxy(ctx); status != transport.ProxyStatusOK {
			return fmt.Errorf("proxy check failed: %s (make sure a SOCKS5 proxy is running at %s): %w",
				status, cfg.ProxyAddress, status.Error())
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}

	runner := &queryRunner{
		cfg:     cfg,
		querier: client,
		stdout:  cmd.OutOrStdout(),
		stderr:  cmd.ErrOrStderr(),
		logger:  logger,
	}

	if cfg.SaveHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			// history is best effort
			logger.Warn("failed to open history database", "dir", cfg.DBDir, "error", err)
		} else {
			defer db.Close()
			runner.history = db
		}
	}

	return runner.run(ctx)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the config file, the
// environment and the command line flags, in that order.
func buildConfig(cmd *cobra.Command, getenv func(string) string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// an explicit config path must exist, the default lookup may find nothing
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cfg.OrgConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.OrgConfigs = &config.File{Orgs: make(map[string]config.OrgConfig)}
	}

	cfg.OrgAlias, err = flags.GetString("org")
	if err != nil {
		return nil, err
	}
	org, err := cfg.OrgConfigs.GetOrgConfig(cfg.OrgAlias)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w (known orgs: %s)",
			err, strings.Join(cfg.OrgConfigs.Aliases(), ", "))
	}
	if cfg.OrgAlias == "" {
		cfg.OrgAlias = cfg.OrgConfigs.DefaultOrg
	}
	cfg.ApplyOrg(org)

	if cfg.OrgConfigs.ResultFormat != "" {
		cfg.ResultFormat, err = model.ParseResultFormat(cfg.OrgConfigs.ResultFormat)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	cfg.ApplyEnv(getenv)

	if err := applyFlags(cfg, cmd); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cfg *config.Config, cmd *cobra.Command) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("instance-url") {
		if cfg.InstanceURL, err = flags.GetString("instance-url"); err != nil {
			return err
		}
	}
	if flags.Changed("api-version") {
		if cfg.APIVersion, err = flags.GetString("api-version"); err != nil {
			return err
		}
	}
	if flags.Changed("use-tooling-api") {
		if cfg.UseTooling, err = flags.GetBool("use-tooling-api"); err != nil {
			return err
		}
	}
	if flags.Changed("max-fetch") {
		if cfg.MaxFetch, err = flags.GetInt("max-fetch"); err != nil {
			return err
		}
	}
	if flags.Changed("result-format") {
		name, err := flags.GetString("result-format")
		if err != nil {
			return err
		}
		format, err := model.ParseResultFormat(name)
		if err != nil {
			return fmt.Errorf("configuration error: %w (valid formats: %s)", err, strings.Join(formatNames(), ", "))
		}
		cfg.ResultFormat = format
	}

	if cfg.JSON, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return err
	}
	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return err
	}
	if cfg.SaveOutputFile, err = flags.GetString("save-output"); err != nil {
		return err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.SaveHistory = !noHistory

	cfg.Verbose = getVerboseFlag(cmd)

	query, err := flags.GetString("query")
	if err != nil {
		return err
	}
	queryFile, err := flags.GetString("file")
	if err != nil {
		return err
	}

	switch {
	case queryFile != "":
		data, err := os.ReadFile(queryFile) //nolint:gosec // User-provided query file is intentional
		if err != nil {
			return fmt.Errorf("failed to read query file: %w", err)
		}
		cfg.Queries = splitQueries(string(data))
		if len(cfg.Queries) == 0 {
			return fmt.Errorf("no query found in %s", queryFile)
		}
	case flags.Changed("query"):
		cfg.Queries = []string{strings.TrimSpace(query)}
	}

	return nil
}

// splitQueries splits text on ';' outside single-quoted literals and drops
// blank statements.
func splitQueries(text string) []string {
	var (
		queries   []string
		current   strings.Builder
		inLiteral bool
		escaped   bool
	)

	flush := func() {
		if q := strings.TrimSpace(current.String()); q != "" {
			queries = append(queries, q)
		}
		current.Reset()
	}

	for _, r := range text {
		switch {
		case inLiteral && escaped:
			escaped = false
		case inLiteral && r == '\\':
			escaped = true
		case r == '\'':
			inLiteral = !inLiteral
		case r == ';' && !inLiteral:
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()

	return queries
}

// newClient creates the REST client for cfg.
func newClient(cfg *config.Config, logger *slog.Logger) (*transport.Client, error) {
	opts := []transport.Option{
		transport.WithAPIVersion(cfg.APIVersion),
		transport.WithTimeout(cfg.Timeout),
		transport.WithTooling(cfg.UseTooling),
		transport.WithMaxFetch(cfg.MaxFetch),
		transport.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, transport.WithSOCKS5Proxy(cfg.ProxyAddress))
	}

	client, err := transport.NewClient(cfg.InstanceURL, cfg.AccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// queryRunner runs the configured queries and renders their results.
type queryRunner struct {
	cfg     *config.Config
	querier pipeline.Querier
	history *database.HistoryDB
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// run executes every query, renders the successful ones in input order and
// reports the failed ones. It fails if any query failed.
func (r *queryRunner) run(ctx context.Context) error {
	out, closeOut, err := r.openOutput()
	if err != nil {
		return err
	}
	defer closeOut()

	execs, err := r.execute(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for i, exec := range execs {
		if exec == nil {
			continue
		}

		if exec.Failed() {
			failed++
			fmt.Fprintf(r.stderr, "query %d failed: %s\n", i+1, exec.ErrorMessage)
		} else if err := r.render(out, exec, i); err != nil {
			exec.Error = err
			exec.ErrorMessage = err.Error()
			failed++
			fmt.Fprintf(r.stderr, "query %d: %v\n", i+1, err)
		}

		r.saveHistory(ctx, exec)
	}

	if failed > 0 {
		if len(execs) == 1 {
			return errors.New("query failed")
		}
		return fmt.Errorf("%d of %d queries failed", failed, len(execs))
	}
	return nil
}

// execute runs the queries, concurrently when there are several of them.
func (r *queryRunner) execute(ctx context.Context) ([]*model.Execution, error) {
	newExecution := func(query string) *model.Execution {
		exec := model.NewExecution(query)
		exec.OrgAlias = r.cfg.OrgAlias
		exec.UseTooling = r.cfg.UseTooling
		return exec
	}

	if len(r.cfg.Queries) == 1 {
		exec := newExecution(r.cfg.Queries[0])
		_ = pipeline.NewQueryPipeline(r.querier, r.logger).Execute(ctx, exec) //nolint:errcheck // Error is stored in exec
		return []*model.Execution{exec}, nil
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewQueryPipeline(r.querier, r.logger)
		},
		pipeline.WithConcurrency(r.cfg.BatchSize),
		pipeline.WithBatchLogger(r.logger),
		pipeline.WithExecutionFactory(newExecution),
	)

	execs, err := bp.ProcessBatch(ctx, r.cfg.Queries)
	if err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}
	return execs, nil
}

// openOutput returns the destination of rendered results.
func (r *queryRunner) openOutput() (io.Writer, func(), error) {
	if r.cfg.OutputFile == "" {
		return r.stdout, func() {}, nil
	}

	f, err := createFile(r.cfg.OutputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// render writes the result of exec in the configured format and saves its
// JSON form when requested.
func (r *queryRunner) render(out io.Writer, exec *model.Execution, index int) error {
	output := exec.Output()

	if err := renderOutput(out, r.cfg.EffectiveFormat(), output, r.logger, r.useColor()); err != nil {
		return err
	}

	if r.cfg.SaveOutputFile != "" {
		path := numberedPath(r.cfg.SaveOutputFile, index, len(r.cfg.Queries))
		if err := saveOutput(path, output); err != nil {
			return err
		}
		r.logger.Info("result saved", "path", path)
	}
	return nil
}

// useColor reports whether text reporters may emit ANSI colors.
func (r *queryRunner) useColor() bool {
	return r.cfg.OutputFile == "" && !color.NoColor
}

// saveHistory records exec in the history database, if one is open.
func (r *queryRunner) saveHistory(ctx context.Context, exec *model.Execution) {
	if r.history == nil {
		return
	}
	if err := r.history.SaveExecution(ctx, exec, r.cfg.EffectiveFormat().String()); err != nil {
		r.logger.Warn("failed to record history", "execution", exec.ID, "error", err)
		return
	}
	r.logger.Debug("execution recorded", "execution", exec.ID)
}
