package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	_ "github.com/fine-structures/ecomotif/pymotif"
	_ "github.com/go-python/gpython/stdlib"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [script.py]",
		Short: "runs a python script with the _pymotif module (REPL if no script is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathname := ""
			if len(args) > 0 {
				pathname = args[0]
			}
			return goGpython(pathname)
		},
	}
}

func goGpython(pathname string) error {
	ctx := py.NewContext(py.DefaultContextOpts())

	var (
		err error
	)
	if len(pathname) == 0 {
		replCtx := repl.New(ctx)
		cli.RunREPL(replCtx)

	} else {
		startTime := time.Now()
		fmt.Printf("<<<>>>   executing '%s'   <<<>>>\n", pathname)

		opts := py.CompileOpts{}
		if filepath.IsAbs(pathname) {
			opts.CurDir = "/"
		}
		_, err = py.RunFile(ctx, pathname, opts, nil)

		if err == nil {
			elapsed := time.Since(startTime)
			fmt.Printf("<<<>>>   execution complete: %v   <<<>>>\n", elapsed)
		}
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
		return errors.Wrapf(err, "running %q", pathname)
	}
	return nil
}
