// Package main provides the CLI entrypoint for viewgen.
//
// viewgen is a schema compiler that:
//   - Loads a JSON-Schema-style protocol document into a type graph
//   - Propagates view-scope requirements over the graph to a fixpoint
//   - Emits parallel owned and zero-copy view Go definitions
//   - Assembles the client/server message envelopes from a YAML config
package main

import (
	"flag"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"

	"viewgen/internal/config"
	"viewgen/internal/emit"
	"viewgen/internal/schema"
	"viewgen/internal/view"
)

func main() {
	var (
		schemaPath = flag.String("schema", "", "path to the protocol schema document (required)")
		configPath = flag.String("config", "", "path to the YAML run configuration")
		outDir     = flag.String("out", "", "output directory (overrides config)")
		pkgName    = flag.String("pkg", "", "generated package name (overrides config)")
		verbose    = flag.Bool("v", false, "enable debug logging")
		dump       = flag.Bool("dump", false, "dump the post-fixpoint view graph and exit")
	)

	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	if *schemaPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(log, *schemaPath, *configPath, *outDir, *pkgName, *dump); err != nil {
		log.Error().Err(err).Msg("compilation failed")
		os.Exit(1)
	}
}

func run(log zerolog.Logger, schemaPath, configPath, outDir, pkgName string, dump bool) error {
	cfg := config.Default()

	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	if outDir != "" {
		cfg.Output = outDir
	}

	if pkgName != "" {
		cfg.Package = pkgName
	}

	start := time.Now()

	g, err := schema.LoadFile(schemaPath)
	if err != nil {
		return err
	}

	log.Debug().Int("types", g.Len()).Dur("elapsed", time.Since(start)).Msg("schema loaded")

	if err := config.BuildEnvelope(g, cfg.Envelope); err != nil {
		return err
	}

	res, err := view.Run(g, view.Options{
		Exclusions: view.NewRegistry(cfg.Exclude...),
		Targets:    cfg.Targets,
	})
	if err != nil {
		return err
	}

	for _, d := range res.Diags.Warnings {
		log.Warn().Msg(d.String())
	}

	for _, d := range res.Diags.Infos {
		log.Debug().Msg(d.String())
	}

	log.Info().
		Int("types", g.Len()).
		Int("view_scoped", len(res.Requires)).
		Int("iterations", res.Iterations).
		Msg("propagation reached fixpoint")

	if dump {
		spew.Fdump(os.Stdout, res.Graph)

		return nil
	}

	emitter := emit.New(emit.Config{PackageName: cfg.Package}, g, res)

	files, err := emitter.Generate()
	if err != nil {
		return err
	}

	paths, err := emit.WriteFiles(files, cfg.Output)
	if err != nil {
		return err
	}

	for i, f := range files {
		log.Debug().Str("file", paths[i]).Int("bytes", len(f.Content)).Msg("emitted")
	}

	log.Info().
		Int("files", len(files)).
		Str("dir", cfg.Output).
		Dur("elapsed", time.Since(start)).
		Msg("done")

	return nil
}
