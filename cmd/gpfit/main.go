// Command gpfit fits a Gaussian Process to a tracking error time series and predicts it.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/ChristopherRabotin/gogp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	configPath string
	verbose    bool

	dataPath string
	outPath  string
	plotPath string

	sampleFrom   float64
	sampleTo     float64
	samplePoints int
	sampleSeed   uint64
	sampleOut    string
)

var rootCmd = &cobra.Command{
	Use:           "gpfit",
	Short:         "Gaussian Process regression of quasi-periodic time series",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a GP to t,y samples and export its prediction",
	Long: `Fit a GP to the t,y samples of a CSV file and export the prediction.

The period is estimated from the spectrum of the data and the hyperparameters are
optimized if the configuration asks for it. The prediction covers the data and the
configured horizon past it.

Examples:
  gpfit fit --data raw.csv --out pred.csv
  gpfit fit --config gp.yaml --data raw.csv --out pred.csv --plot pred.png`,
	RunE: runFit,
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a prior sample of the configured GP",
	RunE:  runSample,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration (defaults if empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging with debug entries")

	fitCmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV file of t,y samples")
	fitCmd.Flags().StringVarP(&outPath, "out", "o", "prediction.csv", "CSV file of the prediction")
	fitCmd.Flags().StringVar(&plotPath, "plot", "", "PNG file of the data and prediction")
	fitCmd.MarkFlagRequired("data")

	sampleCmd.Flags().Float64Var(&sampleFrom, "from", 0, "first location")
	sampleCmd.Flags().Float64Var(&sampleTo, "to", 100, "last location")
	sampleCmd.Flags().IntVar(&samplePoints, "points", 200, "number of locations")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 1, "random seed")
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "", "CSV output (stdout if empty)")

	rootCmd.AddCommand(fitCmd, sampleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gpfit:", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadConfig() (gogp.Config, error) {
	if configPath == "" {
		return gogp.DefaultConfig(), nil
	}
	return gogp.LoadConfig(configPath)
}

func runFit(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	times, values, err := readSamples(dataPath)
	if err != nil {
		return err
	}
	logger.Info("loaded samples", zap.String("file", dataPath), zap.Int("count", len(times)))

	gp, err := cfg.NewGP(gogp.WithLogger(logger))
	if err != nil {
		return err
	}
	if cfg.Period.Estimate {
		if err := estimatePeriod(gp, times, values, cfg.Period.GridPoints, logger); err != nil {
			return err
		}
	}
	locations := mat.NewDense(len(times), 1, times)
	if err := gp.Infer(locations, mat.NewVecDense(len(values), values)); err != nil {
		return err
	}
	if nll, err := gp.NegLogLikelihood(); err == nil {
		logger.Info("inferred", zap.Float64("nll", nll), zap.Float64s("hyperparameters", gp.HyperParameters()))
	}

	if cfg.Optimize.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		res, err := gogp.Optimize(ctx, gp, cfg.OptimizeSettings())
		stop()
		switch {
		case errors.Is(err, context.Canceled):
			logger.Warn("optimization interrupted")
		case err != nil:
			logger.Warn("optimization failed, keeping the configured hyperparameters", zap.Error(err))
		default:
			logger.Info("optimized",
				zap.Float64("nll", res.NegLogLikelihood),
				zap.Float64s("hyperparameters", res.HyperParameters),
				zap.Int("iterations", res.Iterations),
				zap.Stringer("status", res.Status))
		}
	}

	grid := predictionGrid(times[0], times[len(times)-1]+cfg.Prediction.Horizon, cfg.Prediction.Points)
	pred, err := gp.Predict(grid)
	if err != nil {
		return err
	}
	dir, file := filepath.Split(outPath)
	if dir == "" {
		dir = "."
	}
	ce, err := gogp.NewCSVExporter([]string{"t"}, dir, file)
	if err != nil {
		return err
	}
	if err := ce.Write(grid, pred); err != nil {
		ce.Close()
		return err
	}
	if err := ce.Close(); err != nil {
		return err
	}
	logger.Info("prediction exported", zap.String("file", outPath), zap.Int("points", cfg.Prediction.Points))

	if plotPath != "" {
		if err := plotPrediction(plotPath, times, values, grid, pred); err != nil {
			return err
		}
		logger.Info("prediction plotted", zap.String("file", plotPath))
	}
	return nil
}

func estimatePeriod(gp *gogp.GP, times, values []float64, gridPoints int, logger *zap.Logger) error {
	period, err := gogp.EstimatePeriod(times, values, gridPoints)
	if errors.Is(err, gogp.ErrFlatSignal) {
		logger.Warn("no period found, keeping the configured one")
		return nil
	} else if err != nil {
		return err
	}
	cov := gp.CovarianceFunction()
	if err := gogp.ApplyPeriod(cov, period); err != nil {
		return err
	}
	gp.SetCovarianceFunction(cov)
	logger.Info("estimated period", zap.Float64("period", period))
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if samplePoints < 1 {
		return fmt.Errorf("need at least one point, got %d", samplePoints)
	}
	gp, err := cfg.NewGP(gogp.WithLogger(logger), gogp.WithRandSource(rand.NewPCG(sampleSeed, sampleSeed)))
	if err != nil {
		return err
	}
	grid := predictionGrid(sampleFrom, sampleTo, samplePoints)
	sample, err := gp.DrawSample(grid, nil)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if sampleOut != "" {
		f, err := os.Create(sampleOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	cw := csv.NewWriter(w)
	cw.Write([]string{"t", "y"})
	for i := 0; i < samplePoints; i++ {
		cw.Write([]string{
			strconv.FormatFloat(grid.At(i, 0), 'f', -1, 64),
			strconv.FormatFloat(sample.AtVec(i), 'f', -1, 64),
		})
	}
	cw.Flush()
	return cw.Error()
}

// predictionGrid returns n evenly spaced locations from a to b, one per row.
func predictionGrid(a, b float64, n int) *mat.Dense {
	vals := make([]float64, n)
	if n == 1 {
		vals[0] = a
	} else {
		floats.Span(vals, a, b)
	}
	return mat.NewDense(n, 1, vals)
}
