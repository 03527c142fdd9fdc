package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"landed-titles/internal/cache"
	"landed-titles/internal/config"
	"landed-titles/internal/editor"
	"landed-titles/internal/exonym"
	"landed-titles/internal/graph"
	"landed-titles/internal/report"
	"landed-titles/internal/suggest"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// loadFlags are the persistent flags that build the live tree before a command runs.
type loadFlags struct {
	files []string
	dir   string
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var lf loadFlags

	rootCmd := &cobra.Command{
		Use:   "titles",
		Short: "Editor for landed title definition files",
		Long: `Loads landed title files into one merged tree, checks mod files against it,
suggests cultural names from related cultures and writes the result back.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&lf.files, "load", nil, "Title file to load into the live tree (repeatable, first wins)")
	rootCmd.PersistentFlags().StringVar(&lf.dir, "load-dir", "", "Directory of title files to load before --load files")

	rootCmd.AddCommand(saveCmd(&lf))
	rootCmd.AddCommand(checkCmd(&lf))
	rootCmd.AddCommand(suggestCmd(&lf))
	rootCmd.AddCommand(applySuggestionsCmd(&lf))
	rootCmd.AddCommand(removeNamesCmd(&lf))
	rootCmd.AddCommand(cleanCmd())
	rootCmd.AddCommand(exonymsCmd(&lf))
	rootCmd.AddCommand(exportGraphCmd(&lf))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func saveCmd(lf *loadFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "save <output>",
		Short: "Write the merged live tree to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			ed, _, err := openEditor(ctx, lf)
			if err != nil {
				return err
			}
			return ed.SaveTitles(args[0])
		},
	}
}

func checkCmd(lf *loadFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <overlay>",
		Short: "Check a title file against the live tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportPath, _ := cmd.Flags().GetString("export")
			exportFormat, _ := cmd.Flags().GetString("format")
			return runCheck(lf, args[0], exportPath, exportFormat)
		},
	}

	cmd.Flags().String("export", "", "Write violations to this path")
	cmd.Flags().String("format", "tsv", "Export format: tsv or json")

	return cmd
}

func suggestCmd(lf *loadFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "List cultural name suggestions for the live tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exportPath, _ := cmd.Flags().GetString("export")
			exportFormat, _ := cmd.Flags().GetString("format")

			format, err := report.ParseFormat(exportFormat)
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			ed, _, err := openEditor(ctx, lf)
			if err != nil {
				return err
			}

			suggestions := ed.GetSuggestions()
			if exportPath != "" {
				return report.ExportSuggestions(exportPath, suggestions, format)
			}
			return report.WriteSuggestions(cmd.OutOrStdout(), suggestions, format)
		},
	}

	cmd.Flags().String("export", "", "Write suggestions to this path instead of stdout")
	cmd.Flags().String("format", "tsv", "Output format: tsv or json")

	return cmd
}

func applySuggestionsCmd(lf *loadFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply-suggestions <output>",
		Short: "Apply name suggestions to the live tree and save it",
		Long: `Applies name suggestions to the live tree. With --from, suggestions are computed
from that file's tree instead and applied to the live tree. Existing names are never overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")

			ctx, cancel := setupContext()
			defer cancel()

			ed, _, err := openEditor(ctx, lf)
			if err != nil {
				return err
			}

			if from != "" {
				if _, err := ed.ApplySuggestionsFrom(from); err != nil {
					return err
				}
			} else {
				ed.ApplySuggestions()
			}
			return ed.SaveTitles(args[0])
		},
	}

	cmd.Flags().String("from", "", "Compute suggestions from this file's tree")

	return cmd
}

func removeNamesCmd(lf *loadFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-names <output>",
		Short: "Remove cultural names from the live tree and save it",
		Long: `Removes every cultural name from the live tree. With --from, only the culture keys
each title carries in that file are removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")

			ctx, cancel := setupContext()
			defer cancel()

			ed, _, err := openEditor(ctx, lf)
			if err != nil {
				return err
			}

			if from != "" {
				if _, err := ed.RemoveNamesFromFile(from); err != nil {
					return err
				}
			} else {
				ed.RemoveNames()
			}
			return ed.SaveTitles(args[0])
		},
	}

	cmd.Flags().String("from", "", "Only remove the names present in this file")

	return cmd
}

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <file>...",
		Short: "Reformat title files in place, keeping trailing comments where possible",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed := editor.New(suggest.NewEngine(suggest.NewGroups()))
			for _, path := range args {
				if err := ed.CleanFile(path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func exonymsCmd(lf *loadFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exonyms <output>",
		Short: "Fill missing names of one culture from exonym lookups and save the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			target, _ := cmd.Flags().GetString("target")
			lang, _ := cmd.Flags().GetString("lang")
			return runExonyms(lf, editor.ExonymRequest{
				SourceCulture: source,
				TargetCulture: target,
				Language:      lang,
			}, args[0])
		},
	}

	cmd.Flags().String("source", "", "Culture whose names are looked up")
	cmd.Flags().String("target", "", "Culture to fill in")
	cmd.Flags().String("lang", "", "Wikipedia language code of the target culture, e.g. de")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("lang")

	return cmd
}

func exportGraphCmd(lf *loadFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export-graph",
		Short: "Export the live tree and culture groups to Neo4j",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportGraph(lf)
		},
	}
}

// runCheck handles the `check` command. An invalid overlay is reported as an error
// so scripts see a non-zero exit status.
func runCheck(lf *loadFlags, overlay, exportPath, exportFormat string) error {
	format, err := report.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	ctx, cancel := setupContext()
	defer cancel()

	ed, _, err := openEditor(ctx, lf)
	if err != nil {
		return err
	}

	valid, result, err := ed.CheckIntegrity(overlay)
	if err != nil {
		return err
	}

	if exportPath != "" {
		if err := report.ExportViolations(exportPath, report.Violations(result), format); err != nil {
			return err
		}
	}

	if !valid {
		return fmt.Errorf("%s: %d titles with violations", overlay, len(result.Order))
	}
	return nil
}

// runExonyms handles the `exonyms` command.
func runExonyms(lf *loadFlags, req editor.ExonymRequest, output string) error {
	ctx, cancel := setupContext()
	defer cancel()

	ed, cfg, err := openEditor(ctx, lf)
	if err != nil {
		return err
	}

	exonymCache, closeCache, err := initCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	client := exonym.NewClient(cfg.ExonymEndpoint, cfg.ExonymTimeout, exonymCache)
	req.Workers = cfg.MaxConcurrentLookups

	if _, err := ed.ApplyExonyms(ctx, client, req); err != nil {
		return err
	}
	return ed.SaveTitles(output)
}

// runExportGraph handles the `export-graph` command.
func runExportGraph(lf *loadFlags) error {
	ctx, cancel := setupContext()
	defer cancel()

	ed, cfg, err := openEditor(ctx, lf)
	if err != nil {
		return err
	}

	neo4jDriver, err := initNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer neo4jDriver.Close(ctx)

	exporter := graph.NewExporter(neo4jDriver)
	if err := exporter.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}

	groups, err := loadGroups(cfg)
	if err != nil {
		return err
	}

	if err := exporter.ExportTree(ctx, ed.Tree()); err != nil {
		return err
	}
	return exporter.ExportGroups(ctx, groups)
}

// openEditor loads config and builds the live tree from the persistent load flags.
func openEditor(ctx context.Context, lf *loadFlags) (*editor.Editor, *config.Config, error) {
	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.LogLevel)

	groups, err := loadGroups(cfg)
	if err != nil {
		return nil, nil, err
	}

	ed := editor.New(suggest.NewEngine(groups))

	if lf.dir != "" {
		if err := ed.LoadTitlesDir(ctx, lf.dir, cfg.WorkerCount); err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", lf.dir, err)
		}
	}
	for _, path := range lf.files {
		if err := ed.LoadTitles(path); err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if lf.dir == "" && len(lf.files) == 0 {
		log.Warn().Msg("No titles loaded, use --load or --load-dir")
	}
	return ed, cfg, nil
}

func loadGroups(cfg *config.Config) (suggest.Groups, error) {
	if cfg.CultureGroupsFile == "" {
		return suggest.DefaultGroups(), nil
	}
	groups, err := suggest.LoadGroups(cfg.CultureGroupsFile)
	if err != nil {
		return suggest.Groups{}, err
	}
	log.Info().Str("path", cfg.CultureGroupsFile).Int("groups", groups.Len()).Msg("Loaded culture groups")
	return groups, nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// initCache builds the exonym cache. Without DATABASE_URL it stays in memory.
func initCache(ctx context.Context, cfg *config.Config) (*cache.ExonymCache, func(), error) {
	if cfg.DatabaseURL == "" {
		return cache.NewExonymCache(nil), func() {}, nil
	}

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	exonymCache := cache.NewExonymCache(pgPool)
	if err := exonymCache.EnsureSchema(ctx); err != nil {
		pgPool.Close()
		return nil, nil, err
	}
	if err := exonymCache.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload exonym cache")
	}

	return exonymCache, pgPool.Close, nil
}

// initNeo4j connects to Neo4j and verifies the connection.
func initNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := neo4jDriver.VerifyConnectivity(ctx); err != nil {
		neo4jDriver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")

	return neo4jDriver, nil
}
