package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eth-easl/memanomaly/pkg/common"
	"github.com/eth-easl/memanomaly/pkg/config"
	"github.com/eth-easl/memanomaly/pkg/driver"
	"github.com/eth-easl/memanomaly/pkg/generator"
	"github.com/eth-easl/memanomaly/pkg/workload"

	log "github.com/sirupsen/logrus"
)

var (
	configPath = flag.String("config", "cmd/config.json", "Path to monitor configuration file")
	verbosity  = flag.String("verbosity", "info", "Logging verbosity - choose from [info, debug, trace]")
)

func init() {
	// Workers are this binary started with the worker flag first. Their
	// stdout carries the report, so logs go to stderr.
	if len(os.Args) > 1 && os.Args[1] == driver.WorkerModeFlag {
		runWorker(os.Args[2:])
	}

	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), config.DistributionUsage)
		fmt.Fprintln(flag.CommandLine.Output(), "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.StampMilli,
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stdout)

	if !common.IsStringInList(*verbosity, []string{"info", "debug", "trace"}) {
		log.Warnf("Unknown verbosity %q, using info", *verbosity)
	}

	switch *verbosity {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "trace":
		log.SetLevel(log.TraceLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func runWorker(args []string) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	if err := workload.Serve(args, os.Stdout); err != nil {
		log.Fatal(err)
	}
	os.Exit(0)
}

func main() {
	params, err := config.ParseDistributionArguments(flag.Args())
	if err != nil {
		flag.Usage()
		log.Fatal(err)
	}

	common.CheckPath(*configPath)
	cfg := config.ReadConfigurationFile(*configPath)
	common.Check(config.CheckConfiguration(&cfg))

	controller, err := generator.InitializeDistributionController(cfg.DistributionStatePath, params)
	common.Check(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor, err := driver.NewMemoryMonitor(ctx, driver.MonitorConfiguration{
		PollInterval:       cfg.PollInterval(),
		WorkerTimeout:      cfg.WorkerTimeout(),
		CalibrationWorkers: cfg.CalibrationWorkers,
	})
	if err != nil {
		stop()
		log.Fatal(err)
	}

	experimentDriver := driver.NewDriver(&driver.DriverConfiguration{
		MonitorConfiguration: &cfg,
		Controller:           controller,
		Runner:               monitor,
	})

	summary, err := experimentDriver.RunExperiment(ctx)
	if err != nil {
		stop()
		log.Fatal(err)
	}

	driver.LogSummary(summary)
	common.Check(driver.WriteReport(os.Stdout, summary.Statistics))
}
