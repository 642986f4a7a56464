package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path"
	"strings"

	"k8s.io/klog/v2"

	"github.com/born-ml/onnxtrace/internal/backend/cpu"
	"github.com/born-ml/onnxtrace/internal/config"
	"github.com/born-ml/onnxtrace/internal/export"
	"github.com/born-ml/onnxtrace/internal/models"
	"github.com/born-ml/onnxtrace/internal/sink"
	"github.com/born-ml/onnxtrace/internal/tensor"
	"github.com/born-ml/onnxtrace/internal/weights"
)

func runExport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "job file (HCL)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return fmt.Errorf("export: -config is required")
	}

	f, err := config.Load(ctx, *configPath)
	if err != nil {
		return err
	}
	for _, job := range f.Exports {
		jobCtx := klog.NewContext(ctx, klog.FromContext(ctx).WithValues("export", job.Name))
		if err := exportJob(jobCtx, job, out); err != nil {
			return fmt.Errorf("export %q: %w", job.Name, err)
		}
	}
	return nil
}

func exportJob(ctx context.Context, job *config.Export, out io.Writer) error {
	entry, err := models.Lookup(job.Model)
	if err != nil {
		return err
	}
	seed := uint64(job.Seed)
	model, err := models.Build(job.Model, cpu.New(), seed)
	if err != nil {
		return err
	}
	if job.Weights != nil {
		if err := weights.LoadFile(*job.Weights, model); err != nil {
			return err
		}
	}

	shapes := job.Shapes()
	if shapes == nil {
		shapes = entry.Inputs
	}
	var dtypes []tensor.DataType
	for _, in := range job.Inputs {
		dtypes = append(dtypes, in.DataType())
	}
	inputs, err := models.SampleInputs(seed, shapes, dtypes)
	if err != nil {
		return err
	}

	var opts []export.Option
	if job.Opset != nil {
		opts = append(opts, export.WithOpset(*job.Opset))
	}
	if job.GraphName != nil {
		opts = append(opts, export.WithGraphName(*job.GraphName))
	}
	res, err := export.Export(ctx, model, inputs, opts...)
	if err != nil {
		return err
	}
	if job.Verify {
		if err := export.Verify(ctx, res, inputs, export.DefaultTolerance); err != nil {
			return err
		}
	}

	root, name := sink.Split(job.Output)
	dest, err := sink.Open(ctx, root)
	if err != nil {
		return err
	}
	defer dest.Close()

	if err := dest.Write(ctx, name, res.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: wrote %s\n", job.Name, dest.URL(name))

	base := strings.TrimSuffix(name, path.Ext(name))
	if job.SaveText {
		text, err := res.Text()
		if err != nil {
			return err
		}
		if err := dest.Write(ctx, base+".txt", []byte(text)); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: wrote %s\n", job.Name, dest.URL(base+".txt"))
	}

	if job.SaveWeights {
		meta := map[string]string{"model": job.Model, "graph": res.Model.Graph.Name}
		if err := weights.Save(ctx, dest, base+".safetensors", model, meta); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: wrote %s\n", job.Name, dest.URL(base+".safetensors"))
	}

	if job.Testcase {
		dir := base
		if root != "" {
			dir = root + "/" + base
		}
		tc, err := sink.Open(ctx, dir)
		if err != nil {
			return err
		}
		defer tc.Close()
		if err := export.WriteTestcase(ctx, tc, res, inputs); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: wrote test case %s\n", job.Name, tc.URL(""))
	}
	return nil
}
