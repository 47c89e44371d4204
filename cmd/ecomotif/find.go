package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fine-structures/ecomotif/config"
	"github.com/fine-structures/ecomotif/libmotif"
	"github.com/fine-structures/ecomotif/libmotif/catalog"
	"github.com/fine-structures/ecomotif/motifs"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrTraceMismatch = errors.New("motif count disagrees with tr(A^3)")

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [edge-list]",
		Short: "lists the triangular motifs of an edge list",
		Long: `find lists every triangle of the graph, once per pivot node (three entries per
triangle) unless --unique is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				viper.Set("edge_list", args[0])
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return findMotifs(cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.Int("workers", 1, "number of enumeration workers")
	flags.Bool("unique", false, "report each triangle once (canonical node order)")
	flags.Bool("weights", false, "append each motif's three edge weights to its listing line")
	flags.StringP("output", "o", "", "write the listing here instead of stdout")
	flags.StringSlice("comment", nil, "skip lines starting with this prefix (repeatable)")
	flags.String("catalog", "", "add found motifs to the catalog at this path")
	flags.Bool("catalog-read-only", false, "only report on the catalog, adding nothing")

	bindFlags(flags, map[string]string{
		"workers":           "workers",
		"unique":            "unique",
		"weights":           "weights",
		"output":            "output",
		"comment_prefixes":  "comment",
		"catalog.path":      "catalog",
		"catalog.read_only": "catalog-read-only",
	})

	return cmd
}

// bindFlags binds each config key to the named flag so that a flag given on the command line overrides the config file.
func bindFlags(flags *pflag.FlagSet, keyToFlag map[string]string) {
	for key, name := range keyToFlag {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// findMotifs loads the configured edge list, enumerates its motifs and writes the listing to stdout (or cfg.Output).
// A malformed edge list aborts before anything is enumerated or written.
func findMotifs(cfg *config.Config, stdout io.Writer) error {
	X, err := libmotif.LoadEdgeList(cfg.EdgeList, libmotif.ReadOpts{
		CommentPrefixes: cfg.CommentPrefixes,
	})
	if err != nil {
		return err
	}
	klog.Infof("%s: %d nodes, %d edges", cfg.EdgeList, X.NumNodes(), X.NumEdges())

	M := libmotif.FindMotifsParallel(X, cfg.Workers)
	numFound := len(M)

	var TX motifs.Traces
	if cfg.VerifyMaxNodes > 0 && X.NumNodes() <= cfg.VerifyMaxNodes {
		TX = libmotif.AdjacencyTraces(X, 3)
		if 3*TX.NumTriangles() != int64(numFound) {
			return errors.Wrapf(ErrTraceMismatch, "%d motifs vs %d triangles", numFound, TX.NumTriangles())
		}
	}

	unique := libmotif.UniqueMotifs(M)
	klog.Infof("%s: %d motifs, %d distinct triangles", cfg.EdgeList, numFound, len(unique))
	if cfg.Unique {
		M = unique
	}

	if len(cfg.Catalog.Path) > 0 {
		if err = addToCatalog(cfg, networkName(cfg.EdgeList), unique, TX); err != nil {
			return err
		}
	}

	out := stdout
	if len(cfg.Output) > 0 {
		file, err := os.Create(cfg.Output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer file.Close()
		out = file
	}

	var renderer motifs.Renderer = &motifs.ListingRenderer{
		Out:  out,
		Opts: cfg.PrintOpts(),
	}
	return renderer.Render(X, M)
}

func addToCatalog(cfg *config.Config, network string, unique []motifs.Motif, TX motifs.Traces) error {
	ctx := motifs.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	cat, err := catalog.OpenCatalog(ctx, cfg.CatalogOpts())
	if err != nil {
		return err
	}
	defer cat.Close()

	if cat.IsReadOnly() {
		klog.Infof("catalog %s (read-only): %d motifs", cfg.Catalog.Path, cat.NumMotifs())
		return nil
	}

	added := motifs.StreamMotifs(unique).AddTo(cat).PullAll()
	if len(TX) > 0 {
		if err = cat.PutTraces(network, TX); err != nil {
			return errors.Wrap(err, "storing traces")
		}
	}

	klog.Infof("catalog %s: %d new motifs, %d total", cfg.Catalog.Path, added, cat.NumMotifs())
	return nil
}

// networkName names a network by its edge list's base name, e.g. "eco-everglades" for "data/eco-everglades.edges"
func networkName(pathname string) string {
	base := filepath.Base(pathname)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
