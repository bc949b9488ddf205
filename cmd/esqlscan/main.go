package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	urfavecli "github.com/urfave/cli/v3"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/cli"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/logger"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	app := &urfavecli.Command{
		Name:    "esqlscan",
		Usage:   "Host variable annotator for DB2 embedded SQL in C and C++",
		Version: version,
		Commands: []*urfavecli.Command{
			{
				Name:      "scan",
				Usage:     "Annotate host variables and store the result",
				ArgsUsage: "[path]",
				Action:    scanCommand,
				Flags:     append(selectionFlags(), parallelFlag(), annotationsFlag()),
			},
			{
				Name:      "watch",
				Usage:     "Re-annotate files as they change",
				ArgsUsage: "[path]",
				Action:    watchCommand,
				Flags: append(selectionFlags(), parallelFlag(), annotationsFlag(),
					&urfavecli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a batch of changes is scanned",
					}),
			},
			{
				Name:      "check",
				Usage:     "Ask PostgreSQL to parse every EXEC SQL statement",
				ArgsUsage: "[path]",
				Action:    checkCommand,
				Flags: append(selectionFlags(), parallelFlag(),
					&urfavecli.StringFlag{
						Name:    "connection",
						Aliases: []string{"c"},
						Usage:   "PostgreSQL connection string (URI or key=value format). Supports standard PG* environment variables.",
					},
					&urfavecli.StringSliceFlag{
						Name:  "schema",
						Usage: "SQL file applied to a scratch database before checking (repeatable)",
					},
					&urfavecli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-statement timeout",
					}),
			},
			{
				Name:   "report",
				Usage:  "Render stored annotations",
				Action: reportCommand,
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:  "format",
						Usage: "Output format (json, text, or html)",
						Value: "json",
					},
					&urfavecli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (use - for stdout)",
						Value:   "-",
					},
					annotationsFlag(),
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func selectionFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringSliceFlag{
			Name:  "pattern",
			Usage: "Glob selecting files below the search path (repeatable)",
		},
		&urfavecli.StringSliceFlag{
			Name:  "ignore",
			Usage: "Glob excluding files or directories (repeatable)",
		},
		&urfavecli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug output",
		},
	}
}

func parallelFlag() urfavecli.Flag {
	return &urfavecli.IntFlag{
		Name:  "parallel",
		Usage: "Maximum concurrent files (1 = sequential)",
	}
}

func annotationsFlag() urfavecli.Flag {
	return &urfavecli.StringFlag{
		Name:  "annotations-file",
		Usage: "Annotation data path",
	}
}

// loadConfig merges the config file, environment and flags, then validates.
// Invalid configuration exits with status 2.
func loadConfig(cmd *urfavecli.Command) *cli.Config {
	config, err := cli.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cli.ApplyFlagsToConfig(config, cli.Overrides{
		Connection:      cmd.String("connection"),
		SchemaFiles:     cmd.StringSlice("schema"),
		Patterns:        cmd.StringSlice("pattern"),
		Ignore:          cmd.StringSlice("ignore"),
		Timeout:         cmd.Duration("timeout"),
		Debounce:        cmd.Duration("debounce"),
		Parallel:        int(cmd.Int("parallel")),
		AnnotationsFile: cmd.String("annotations-file"),
		Verbose:         cmd.Bool("verbose"),
	})

	if err := cli.ResolveSearchPath(config, cmd.Args().First()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger.SetVerbose(config.Verbose)
	return config
}

func exit(code int, err error) error {
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// scanCommand handles 'esqlscan scan'
func scanCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := loadConfig(cmd)
	return exit(cli.Scan(ctx, config, os.Stdout))
}

// checkCommand handles 'esqlscan check'
func checkCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := loadConfig(cmd)
	return exit(cli.Check(ctx, config, os.Stdout))
}

// watchCommand handles 'esqlscan watch'. It stops on SIGINT or SIGTERM.
func watchCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := loadConfig(cmd)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Watch(ctx, config, os.Stdout)
}

// reportCommand handles 'esqlscan report'
func reportCommand(ctx context.Context, cmd *urfavecli.Command) error {
	annotationsFile := cmd.String("annotations-file")
	if annotationsFile == "" {
		config, err := cli.LoadConfig(".")
		if err != nil {
			return err
		}
		annotationsFile = config.AnnotationsFile
	}
	return cli.Report(annotationsFile, cmd.String("format"), cmd.String("output"))
}
