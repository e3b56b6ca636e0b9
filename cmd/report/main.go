package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/godilite/labor-insights/internal/config"
	"github.com/godilite/labor-insights/internal/ingest"
	"github.com/godilite/labor-insights/internal/pipeline"
	"github.com/godilite/labor-insights/internal/report"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.LoadFromEnv()

	join := flag.String("join", cfg.JoinMode, "before/after alignment: key or positional")
	delta := flag.String("delta", cfg.DeltaFormula, "change formula: literal or percent")
	format := flag.String("format", string(report.FormatText), "output format: text or csv")
	precision := flag.Int("precision", -1, "decimals for floats, -1 for shortest")
	sheet := flag.String("sheet", "", "worksheet to read from an xlsx file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file.csv|file.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(flag.Arg(0), *join, *delta, *format, *precision, *sheet); err != nil {
		logger.Fatal("report failed", zap.String("file", flag.Arg(0)), zap.Error(err))
	}
}

func run(path, join, delta, format string, precision int, sheet string) error {
	joinMode, err := pipeline.ParseJoinMode(join)
	if err != nil {
		return err
	}
	formula, err := pipeline.ParseDeltaFormula(delta)
	if err != nil {
		return err
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}

	var opts []ingest.Option
	if sheet != "" {
		opts = append(opts, ingest.WithSheet(sheet))
	}
	table, err := ingest.ReadFile(path, opts...)
	if err != nil {
		return err
	}

	c := pipeline.DefaultComparator()
	c.Join = joinMode
	c.Delta = formula
	tables, err := pipeline.New(pipeline.WithComparator(c)).Run(table.Header, table.Rows)
	if err != nil {
		return err
	}

	return report.NewWriter(os.Stdout, report.WithFormat(f), report.WithPrecision(precision)).Write(tables.All())
}
