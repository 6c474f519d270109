package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/goliatone/go-entityform/pkg/config"
	"github.com/goliatone/go-entityform/pkg/form"
	"github.com/goliatone/go-entityform/pkg/logging"
	"github.com/goliatone/go-entityform/pkg/metrics"
	pkgopenapi "github.com/goliatone/go-entityform/pkg/openapi"
	"github.com/goliatone/go-entityform/pkg/render/preview"
	"github.com/goliatone/go-entityform/pkg/renderers/tui"
	"github.com/goliatone/go-entityform/pkg/testsupport"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// catalog lists the demo types the CLI can synthesize forms for.
var catalog = map[string]reflect.Type{
	"ticket": reflect.TypeOf(testsupport.Ticket{}),
	"agent":  reflect.TypeOf(testsupport.Agent{}),
}

type options struct {
	typeName    string
	format      string
	output      string
	configPath  string
	sample      bool
	showMetrics bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("entityform-cli: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		dir, file := filepath.Split(opts.configPath)
		if dir == "" {
			dir = "."
		}
		if cfg, err = config.Load(os.DirFS(dir), file); err != nil {
			return err
		}
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	t, ok := catalog[strings.ToLower(opts.typeName)]
	if !ok {
		return fmt.Errorf("unknown type %q (known: %s)", opts.typeName, strings.Join(typeNames(), ", "))
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewPrometheus(registry, "")
	if err != nil {
		return err
	}

	formOpts := append(cfg.FormOptions(),
		form.WithServices(testsupport.Services()),
		form.WithLogger(logger),
		form.WithMetrics(recorder),
		form.WithNotifier(form.NotifierFunc(func(property string, err error) {
			logger.Warn("field could not be loaded", zap.String("property", property), zap.Error(err))
		})),
	)
	f, err := form.Build(t, formOpts...)
	if err != nil {
		return err
	}

	var record any
	if opts.sample || opts.format == "tui" {
		record = sampleRecord(t)
		if err := f.Populate(record); err != nil {
			return err
		}
	}

	var out []byte
	switch opts.format {
	case "html":
		renderer, err := preview.New()
		if err != nil {
			return err
		}
		html, err := renderer.Render(f)
		if err != nil {
			return err
		}
		out = []byte(html)
	case "schema":
		if out, err = pkgopenapi.MarshalJSON(f); err != nil {
			return err
		}
	case "document":
		doc := pkgopenapi.Document("entityform "+t.Name(), "1.0.0", f)
		if out, err = json.MarshalIndent(doc, "", "  "); err != nil {
			return err
		}
	case "tui":
		if err := tui.New(tui.WithLogger(logger)).Fill(ctx, f); err != nil {
			return err
		}
		if err := f.Validate(); err != nil {
			fmt.Fprintf(stdout, "validation: %v\n", err)
		}
		if out, err = json.MarshalIndent(record, "", "  "); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(stdout, "Form written to %s\n", opts.output)
	} else {
		fmt.Fprintln(stdout, string(out))
	}

	if opts.showMetrics {
		return writeMetrics(stdout, registry)
	}
	return nil
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("entityform-cli", flag.ContinueOnError)
	fs.StringVar(&opts.typeName, "type", "ticket", "type to synthesize a form for ("+strings.Join(typeNames(), ", ")+")")
	fs.StringVar(&opts.format, "format", "html", "output format: html, schema, document or tui")
	fs.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.BoolVar(&opts.sample, "sample", false, "populate the form with a sample record")
	fs.BoolVar(&opts.showMetrics, "metrics", false, "print synthesis counters after the output")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, errors.New("unexpected arguments: " + strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

func sampleRecord(t reflect.Type) any {
	agents := testsupport.Agents()
	switch t {
	case reflect.TypeOf(testsupport.Ticket{}):
		return testsupport.SampleTicket(agents)
	case reflect.TypeOf(testsupport.Agent{}):
		return agents[0]
	}
	return reflect.New(t).Interface()
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var labels []string
			for _, pair := range metric.GetLabel() {
				labels = append(labels, pair.GetName()+"="+pair.GetValue())
			}
			fmt.Fprintf(w, "%s{%s} %v\n", family.GetName(), strings.Join(labels, ","), metric.GetCounter().GetValue())
		}
	}
	return nil
}

func typeNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
