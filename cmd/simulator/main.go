package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/simulator"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], cfg, os.Stderr, log); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Error("simulator failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, cfg *config.Config, out io.Writer, log *slog.Logger) error {
	flags := flag.NewFlagSet("simulator", flag.ContinueOnError)
	flags.SetOutput(out)
	mode := flags.String("mode", "publish", "publish readings over MQTT, or write a labelled dataset")
	interval := flags.Duration("interval", 2*time.Second, "publish interval")
	rows := flags.Int("rows", 2000, "dataset rows")
	outPath := flags.String("out", "dataset_training_final.csv", "dataset output file")
	seed := flags.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	if err := flags.Parse(args); err != nil {
		return err
	}

	bin := simulator.NewBin(cfg.Sensor.BinDepthCM, cfg.Sensor.GasMax, *seed)

	switch *mode {
	case "publish":
		pub := simulator.NewPublisher(cfg.MQTT, bin, *interval, log)
		if err := pub.Connect(); err != nil {
			return err
		}
		defer pub.Close()
		pub.Run(ctx)
		return nil

	case "dataset":
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("create dataset: %w", err)
		}
		rules := simulator.LabelRules{
			GasThreshold:      cfg.Classifier.GasThreshold,
			DistanceThreshold: cfg.Classifier.DistanceThreshold,
		}
		if err := simulator.WriteDataset(f, *rows, bin, rules); err != nil {
			f.Close()
			return fmt.Errorf("write dataset: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("dataset written", "path", *outPath, "rows", *rows)
		return nil

	default:
		return fmt.Errorf("unknown -mode %q (want publish or dataset)", *mode)
	}
}
