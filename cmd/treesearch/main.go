// Command treesearch runs the bundled example problems through the
// parallel search skeletons.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/treesearch"
	"github.com/hupe1980/treesearch/dimacs"
	"github.com/hupe1980/treesearch/problems/maxclique"
	"github.com/hupe1980/treesearch/problems/semigroups"
)

type rootFlags struct {
	skeleton         string
	workers          int
	spawnDepth       int
	backtrackBudget  int
	spawnProbability uint64
	seed             int64
	stealAll         bool
	discrepancy      bool
	maxStackDepth    int
	verbose          bool
}

func (f *rootFlags) params() (treesearch.Params[int], error) {
	skel, err := parseSkeleton(f.skeleton)
	if err != nil {
		return treesearch.Params[int]{}, err
	}

	params := treesearch.DefaultParams[int]()
	params.Skeleton = skel
	params.Workers = f.workers
	params.SpawnDepth = f.spawnDepth
	params.BacktrackBudget = f.backtrackBudget
	params.SpawnProbability = f.spawnProbability
	params.Seed = f.seed
	params.StealAll = f.stealAll
	params.DiscrepancyOrder = f.discrepancy
	if f.maxStackDepth > 0 {
		params.MaxStackDepth = f.maxStackDepth
	}
	return params, nil
}

func (f *rootFlags) options() []treesearch.Option {
	if !f.verbose {
		return nil
	}
	return []treesearch.Option{treesearch.WithLogLevel(slog.LevelDebug)}
}

func parseSkeleton(s string) (treesearch.Skeleton, error) {
	switch strings.ToLower(s) {
	case "seq":
		return treesearch.SkeletonSeq, nil
	case "depthbounded":
		return treesearch.SkeletonDepthBounded, nil
	case "stacksteal":
		return treesearch.SkeletonStackStealing, nil
	case "ordered":
		return treesearch.SkeletonOrdered, nil
	case "budget":
		return treesearch.SkeletonBudget, nil
	case "random":
		return treesearch.SkeletonRandom, nil
	case "indexed":
		return treesearch.SkeletonIndexed, nil
	default:
		return 0, fmt.Errorf("invalid skeleton type %q: should be seq, depthbounded, stacksteal, ordered, budget, random or indexed", s)
	}
}

func main() {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "treesearch",
		Short:         "Parallel tree-search skeleton examples",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.skeleton, "skeleton", "seq", "which skeleton to use: seq, depthbounded, stacksteal, ordered, budget, random or indexed")
	pf.IntVar(&flags.workers, "workers", 0, "scheduler threads (0 = GOMAXPROCS-1)")
	pf.IntVarP(&flags.spawnDepth, "spawn-depth", "d", 0, "depth in the tree to spawn until (depthbounded/ordered)")
	pf.IntVarP(&flags.backtrackBudget, "backtrack-budget", "b", 500, "number of backtracks before spawning work (budget)")
	pf.Uint64Var(&flags.spawnProbability, "spawn-probability", 1000000, "reciprocal spawn probability (random)")
	pf.Int64Var(&flags.seed, "seed", 1, "spawn RNG seed (random)")
	pf.BoolVar(&flags.stealAll, "chunked", false, "steal all remaining siblings per request (stacksteal)")
	pf.BoolVar(&flags.discrepancy, "discrepancy", false, "order by discrepancy instead of depth (ordered)")
	pf.IntVar(&flags.maxStackDepth, "max-stack-depth", 0, "engine stack capacity (0 = default)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newMaxCliqueCmd(flags))
	rootCmd.AddCommand(newSemigroupsCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newMaxCliqueCmd(flags *rootFlags) *cobra.Command {
	var (
		inputFile    string
		expectedSize int
	)

	cmd := &cobra.Command{
		Use:   "maxclique",
		Short: "Maximum clique on a DIMACS graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}

			gf, err := dimacs.ReadFile(inputFile)
			if err != nil {
				return err
			}
			graph := maxclique.NewGraph(gf)
			prob := maxclique.Problem()
			root := maxclique.Root(graph)

			metrics := &treesearch.Metrics{}
			opts := append(flags.options(), treesearch.WithMetrics(metrics))

			start := time.Now()

			if expectedSize > 0 {
				params.ExpectedObjective = expectedSize
				node, found, err := treesearch.Decide(cmd.Context(), graph, root, prob, params, opts...)
				if err != nil {
					return err
				}
				fmt.Printf("Clique of size >= %d found = %v\n", expectedSize, found)
				if found {
					printClique(graph, node)
				}
			} else {
				node, size, err := treesearch.Optimise(cmd.Context(), graph, root, prob, params, opts...)
				if err != nil {
					return err
				}
				fmt.Printf("MaxClique Size = %d\n", size)
				printClique(graph, node)
			}

			fmt.Printf("cpu = %d\n", time.Since(start).Milliseconds())
			fmt.Printf("Expands = %d\n", metrics.NodesExpanded.Load())
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input-file", "f", "", "DIMACS formatted input graph")
	cmd.Flags().IntVar(&expectedSize, "decision-size", 0, "stop at the first clique of this size (0 = optimise)")
	_ = cmd.MarkFlagRequired("input-file")

	return cmd
}

func printClique(g *maxclique.Graph, n maxclique.Node) {
	members := make([]int, 0, n.Size())
	for _, v := range n.Members {
		members = append(members, g.Original(int(v)))
	}
	fmt.Printf("Members = %v\n", members)
}

func newSemigroupsCmd(flags *rootFlags) *cobra.Command {
	var genus int

	cmd := &cobra.Command{
		Use:   "semigroups",
		Short: "Count numerical semigroups by genus",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}
			if genus < 1 || genus > semigroups.MaxGenus {
				return fmt.Errorf("genus must be between 1 and %d", semigroups.MaxGenus)
			}
			params.MaxDepth = genus

			start := time.Now()

			counts, err := treesearch.Enumerate(cmd.Context(), struct{}{}, semigroups.Root(), semigroups.Problem(genus), params, flags.options()...)
			if err != nil {
				return err
			}

			fmt.Println("Results Table:")
			for i, c := range counts {
				fmt.Printf("%d: %d\n", i, c)
			}
			fmt.Println("=====")
			fmt.Printf("cpu = %d\n", time.Since(start).Milliseconds())
			return nil
		},
	}

	cmd.Flags().IntVarP(&genus, "genus", "g", 10, "genus to count until")

	return cmd
}
