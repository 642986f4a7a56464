package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/born-ml/onnxtrace/internal/models"
	"github.com/born-ml/onnxtrace/internal/onnx"
)

func runInspect(args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("inspect: expected one model file, got %d arguments", len(args))
	}
	info, err := onnx.GetModelInfo(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "graph %q: IR %d, opset %d, producer %s %s\n",
		info.GraphName, info.IRVersion, info.OpsetVersion, info.ProducerName, info.ProducerVersion)
	fmt.Fprintf(out, "%d nodes, %d initializers\n", info.NodeCount, info.WeightCount)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, v := range info.Inputs {
		fmt.Fprintf(tw, "input\t%s\t%s\t%v\n", v.Name, v.Type, v.Shape)
	}
	for _, v := range info.Outputs {
		fmt.Fprintf(tw, "output\t%s\t%s\t%v\n", v.Name, v.Type, v.Shape)
	}
	for _, op := range info.OpTypes() {
		fmt.Fprintf(tw, "op\t%s\t%d\t\n", op, info.OpCounts[op])
	}
	return tw.Flush()
}

func runModels(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, name := range models.Names() {
		entry, err := models.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%v\t%s\n", name, entry.Inputs, entry.Doc)
	}
	return tw.Flush()
}
