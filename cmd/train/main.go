package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/forest"
	"github.com/Faarae/dashboard-SmartEcoBin/models"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	log := config.NewLogger(config.LogConfig{Level: os.Getenv("LOG_LEVEL")})

	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Error("training failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, log *slog.Logger) error {
	defaultModel := os.Getenv("MODEL_PATH")
	if defaultModel == "" {
		defaultModel = "model_sampah.json"
	}

	flags := flag.NewFlagSet("train", flag.ContinueOnError)
	flags.SetOutput(out)
	dataPath := flags.String("data", "dataset_training_final.csv", "training CSV with columns Gas,Jarak,Delta_Gas,Label")
	modelPath := flags.String("out", defaultModel, "where to write the model artifact")
	trees := flags.Int("trees", 100, "number of trees")
	seed := flags.Uint64("seed", 42, "seed for the split and the forest")
	testFraction := flags.Float64("test", 0.2, "fraction of rows held out for evaluation")
	maxDepth := flags.Int("max-depth", 0, "maximum tree depth, 0 for unlimited")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *testFraction <= 0 || *testFraction >= 1 {
		return fmt.Errorf("-test must be between 0 and 1, got %v", *testFraction)
	}

	log.Info("reading dataset", "path", *dataPath)
	ds, err := forest.LoadDataset(*dataPath, len(models.LabelNames))
	if err != nil {
		return err
	}
	if ds.Len() < 2 {
		return fmt.Errorf("dataset %s has %d rows, need at least 2", *dataPath, ds.Len())
	}

	train, test := ds.Split(*testFraction, *seed)
	opts := forest.DefaultOptions()
	opts.Trees = *trees
	opts.Seed = *seed
	opts.MaxDepth = *maxDepth

	log.Info("training random forest", "trees", opts.Trees, "train_rows", train.Len(), "test_rows", test.Len())
	model, err := forest.Fit(train, forest.FeatureNames, len(models.LabelNames), opts)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	pred, err := model.PredictAll(test.X)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	report, err := forest.Evaluate(test.Y, pred, models.LabelNames)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	fmt.Fprintf(out, "accuracy: %.2f%%\n\n%s", report.Accuracy*100, report)

	if err := forest.Save(*modelPath, model); err != nil {
		return err
	}
	log.Info("model saved", "path", *modelPath)
	return nil
}
