// Command onnxtrace exports models to ONNX by tracing one forward pass.
//
// Usage:
//
//	onnxtrace [klog flags] export -config job.hcl
//	onnxtrace inspect model.onnx
//	onnxtrace models
//	onnxtrace version
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"k8s.io/klog/v2"

	"github.com/born-ml/onnxtrace/internal/export"
)

func main() {
	ctx := context.Background()

	klog.InitFlags(nil)
	flag.Usage = func() { usage(flag.CommandLine.Output()) }
	flag.Parse()

	err := run(ctx, flag.Args(), os.Stdout)
	klog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("no command")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "export":
		return runExport(ctx, rest, out)
	case "inspect":
		return runInspect(rest, out)
	case "models":
		return runModels(out)
	case "version":
		fmt.Fprintf(out, "onnxtrace %s\n", export.Version)
		return nil
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "onnxtrace - export traced models to ONNX")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export -config job.hcl   Run every export block of a job file")
	fmt.Fprintln(w, "  inspect model.onnx       Print inputs, outputs and operators of a model")
	fmt.Fprintln(w, "  models                   List built-in models")
	fmt.Fprintln(w, "  version                  Show version")
}
