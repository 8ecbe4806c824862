package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/hydrosim/internal/bench"
	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/engine"
	"github.com/san-kum/hydrosim/internal/gen"
	"github.com/san-kum/hydrosim/internal/log"
	"github.com/san-kum/hydrosim/internal/metrics"
	"github.com/san-kum/hydrosim/internal/optim"
	"github.com/san-kum/hydrosim/internal/storage"
	"github.com/san-kum/hydrosim/internal/viz"
)

var (
	dataDir string
	debug   bool

	configFile string
	preset     string
	name       string
	executor   string
	workers    int
	steps      int
	cases      int
	seed       int64
	scale      float64

	caseIdx int
	format  string
	repeats int
	grid    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hydrosim",
		Short:         "parallel reservoir recurrence lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return log.Init(debug)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hydrosim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "development logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addInputFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&name, "name", "reservoir", "run name")
	runCmd.Flags().StringVar(&executor, "executor", config.DefaultExecutor, "executor (sequential, chunked, pool)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one case of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&caseIdx, "case", 0, "case index")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse the cases of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json, msgpack or csv")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare executors on generated inputs",
		Args:  cobra.NoArgs,
		RunE:  benchExecutors,
	}
	addInputFlags(benchCmd)
	benchCmd.Flags().IntVar(&repeats, "repeats", 5, "timed repetitions per executor")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEXECUTOR\tSTEPS\tCASES\tSEED")
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", p, cfg.Executor, cfg.Steps, cfg.Cases, cfg.Seed)
			}
			return w.Flush()
		},
	}

	calibrateCmd := &cobra.Command{
		Use:   "calibrate [run_id]",
		Short: "recover the coefficients of one case by grid search",
		Args:  cobra.ExactArgs(1),
		RunE:  calibrateRun,
	}
	calibrateCmd.Flags().IntVar(&caseIdx, "case", 0, "case whose output is treated as observed")
	calibrateCmd.Flags().IntVar(&grid, "grid", 11, "grid points per coefficient")
	calibrateCmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = all cpus)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, viewCmd, exportCmd, benchCmd, calibrateCmd, presetsCmd)

	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = all cpus)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "time steps")
	cmd.Flags().IntVar(&cases, "cases", config.DefaultCases, "parameter cases")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "precipitation scale")
}

// resolveConfig layers preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("name") || cfg.Name == "" {
		cfg.Name = name
	}
	if flags.Changed("executor") {
		cfg.Executor = executor
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("cases") {
		cfg.Cases = cases
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("scale") {
		cfg.Scale = scale
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	g := gen.New(cfg.Seed)
	ps, err := cfg.ParameterSet(g)
	if err != nil {
		return err
	}
	in := cfg.InputSeries(g)

	exec, err := cfg.NewExecutor()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	log.Infow("running simulation", "name", cfg.Name, "executor", exec.Name(), "steps", len(in), "cases", len(ps))
	start := time.Now()
	out := engine.New(exec).Compute(ps, in)
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Name:      cfg.Name,
		Seed:      cfg.Seed,
		Executor:  exec.Name(),
		Workers:   cfg.Workers,
		ElapsedMs: float64(elapsed.Microseconds()) / 1000,
	}, ps, in, out)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  cases: %d\n\n", out.Rows(), out.Cols())

	return printSummaries(ps, in, out, 10)
}

func printSummaries(ps engine.ParameterSet, in engine.InputSeries, out *engine.OutputMatrix, limit int) error {
	summaries := metrics.SummarizeAll(out, in)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tALPHA\tBETA\tGAMMA\tMEAN\tMAX\tRUNOFF")
	for k, s := range summaries {
		if k == limit {
			fmt.Fprintf(w, "...\t%d more\t\t\t\t\t\n", len(summaries)-limit)
			break
		}
		p := ps[k]
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			k, p.Alpha, p.Beta, p.Gamma, s.Mean, s.Max, s.RunoffRatio)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tEXECUTOR\tSTEPS\tCASES\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2fms\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Executor,
			run.Steps,
			run.Cases,
			run.ElapsedMs,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ps, err := st.LoadParameters(runID)
	if err != nil {
		return err
	}
	out, err := st.LoadOutput(runID)
	if err != nil {
		return err
	}

	if caseIdx < 0 || caseIdx >= out.Cols() {
		return fmt.Errorf("case %d out of range (run has %d cases)", caseIdx, out.Cols())
	}
	if out.Rows() == 0 {
		return fmt.Errorf("no data to plot")
	}

	p := ps[caseIdx]
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("case %d: alpha=%.4f beta=%.4f gamma=%.4f\n\n", caseIdx, p.Alpha, p.Beta, p.Gamma)
	fmt.Println(viz.PlotColumn(out, caseIdx, fmt.Sprintf("discharge q%d vs step", caseIdx), 80, 10))

	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	data, err := st.Export(runID)
	if err != nil {
		return err
	}
	out, err := data.Matrix()
	if err != nil {
		return err
	}

	v := viz.NewViewer(data.Run.ID, data.Params, data.Input, out)
	if _, err := tea.NewProgram(v, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	data, err := st.Export(runID)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return storage.ExportJSON(os.Stdout, data)
	case "msgpack":
		return storage.ExportMsgpack(os.Stdout, data)
	case "csv":
		out, err := data.Matrix()
		if err != nil {
			return err
		}
		return storage.WriteOutputCSV(os.Stdout, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func benchExecutors(cmd *cobra.Command, args []string) error {
	if steps < 0 || cases < 0 || workers < 0 {
		return fmt.Errorf("steps, cases and workers must be non-negative")
	}

	g := gen.New(seed)
	ps := g.Parameters(cases)
	in := g.Precipitation(steps, scale)

	execs := make([]engine.Executor, 0)
	for _, n := range engine.ExecutorNames() {
		exec, err := engine.NewExecutor(n, workers)
		if err != nil {
			return err
		}
		execs = append(execs, exec)
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("benchmarking %d cases x %d steps", cases, steps)))
	fmt.Println()

	report, err := bench.Compare(ps, in, execs, repeats)
	if report == nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXECUTOR\tBEST\tMEAN\tSPEEDUP\tOUTPUT")
	for _, e := range report.Entries {
		fmt.Fprintf(w, "%s\t%v\t%v\t%.2fx\t%s\n", e.Executor, e.Best, e.Mean, e.Speedup, viz.Status(e.Match))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}

	if errors.Is(err, bench.ErrMismatch) {
		log.Errorw("executor output diverged", "executors", report.Mismatches())
	}
	return err
}

func calibrateRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	data, err := st.Export(runID)
	if err != nil {
		return err
	}
	if caseIdx < 0 || caseIdx >= len(data.Output) {
		return fmt.Errorf("case %d out of range (run has %d cases)", caseIdx, len(data.Output))
	}
	if grid < 1 {
		return fmt.Errorf("grid must be positive, got %d", grid)
	}

	gs := optim.NewUniformGrid(grid)
	e := engine.New(engine.Chunked{Workers: workers, MinChunk: 1})

	start := time.Now()
	res, err := gs.Search(e, data.Input, data.Output[caseIdx])
	if err != nil {
		return err
	}
	log.Debugw("calibration finished", "run", runID, "case", caseIdx, "evaluated", res.Evaluated)

	p := data.Params[caseIdx]
	fmt.Printf("evaluated %d candidates in %v\n\n", res.Evaluated, time.Since(start))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tALPHA\tBETA\tGAMMA")
	fmt.Fprintf(w, "actual\t%.4f\t%.4f\t%.4f\n", p.Alpha, p.Beta, p.Gamma)
	fmt.Fprintf(w, "best\t%.4f\t%.4f\t%.4f\n", res.Best.Alpha, res.Best.Beta, res.Best.Gamma)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(viz.Metric("rmse", fmt.Sprintf("%.6g", res.RMSE)))
	return nil
}
