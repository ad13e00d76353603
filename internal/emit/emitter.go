// Package emit packages the final owned and view graphs as Go source: one
// file of owned definitions, one of view definitions, and the envelope
// aliases the protocol layer consumes.
package emit

import (
	"fmt"

	"golang.org/x/tools/imports"

	"viewgen/internal/config"
	"viewgen/internal/graph"
	"viewgen/internal/view"
)

// Config holds configuration for code generation.
type Config struct {
	// PackageName is the name of the generated package.
	PackageName string
	// WireImport is the import path of the runtime support package.
	WireImport string
}

// DefaultConfig returns the default emitter configuration.
func DefaultConfig() Config {
	return Config{
		PackageName: "schema",
		WireImport:  "viewgen/wire",
	}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g. "types_owned.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Emitter generates Go source from the owned graph and a propagation
// result.
type Emitter struct {
	cfg   Config
	owned *graph.Graph
	res   *view.Result
}

// New creates an Emitter. The owned graph must be the pre-propagation
// graph the result was computed from.
func New(cfg Config, owned *graph.Graph, res *view.Result) *Emitter {
	if cfg.PackageName == "" {
		cfg.PackageName = DefaultConfig().PackageName
	}

	if cfg.WireImport == "" {
		cfg.WireImport = DefaultConfig().WireImport
	}

	return &Emitter{cfg: cfg, owned: owned, res: res}
}

// Generate emits all source files. Both representations describe the same
// wire shape; only the in-memory storage strategy differs.
func (e *Emitter) Generate() ([]GeneratedFile, error) {
	files := []GeneratedFile{
		{Filename: "types_owned.go", Content: e.ownedFile()},
		{Filename: "types_view.go", Content: e.viewFile()},
	}

	if env := e.envelopeFile(); env != nil {
		files = append(files, GeneratedFile{Filename: "envelope.go", Content: env})
	}

	for i := range files {
		formatted, err := imports.Process(files[i].Filename, files[i].Content, nil)
		if err != nil {
			return nil, fmt.Errorf("formatting %s: %w", files[i].Filename, err)
		}

		files[i].Content = formatted
	}

	return files, nil
}

func (e *Emitter) fileHeader(b *builder) {
	b.pf("// Code generated by viewgen. DO NOT EDIT.\n\n")
	b.pf("package %s\n\n", e.cfg.PackageName)
	b.pf("import (\n")
	b.pf("\t\"fmt\"\n\n")
	b.pf("\t\"github.com/goccy/go-json\"\n\n")
	b.pf("\t%q\n", e.cfg.WireImport)
	b.pf(")\n\n")
}

// ownedFile renders every definition in its owned shape.
func (e *Emitter) ownedFile() []byte {
	b := &builder{}
	e.fileHeader(b)

	for _, def := range e.owned.Defs() {
		switch def.Kind {
		case graph.KindRecord:
			b.record(def, false)
		case graph.KindUnion:
			b.union(def, false)
		}
	}

	return b.buf.Bytes()
}

// viewFile renders the view twin, construction blocks and owned-conversion
// methods of every view-scoped definition. Definitions outside the
// requirement set have no twin: view code references their owned shape
// directly.
func (e *Emitter) viewFile() []byte {
	b := &builder{}
	e.fileHeader(b)

	for _, def := range e.res.Graph.Defs() {
		if !def.NeedsView {
			continue
		}

		switch def.Kind {
		case graph.KindRecord:
			b.record(def, true)
			b.constructors(def)
			b.recordToOwned(def)
		case graph.KindUnion:
			b.union(def, true)
			b.unionToOwned(def)
		}
	}

	return b.buf.Bytes()
}

// envelopeFile renders the client and server message aliases plus bind
// helpers, when the envelope unions are present in the graph.
func (e *Emitter) envelopeFile() []byte {
	sides := []struct {
		label                           string
		requests, results, notification string
	}{
		{"Client", config.ClientRequestUnion, config.ClientResultUnion, config.ClientNotificationUnion},
		{"Server", config.ServerRequestUnion, config.ServerResultUnion, config.ServerNotificationUnion},
	}

	b := &builder{}
	e.fileHeader(b)

	emitted := false

	for _, s := range sides {
		rq := e.res.Graph.Get(s.requests)
		rs := e.res.Graph.Get(s.results)
		n := e.res.Graph.Get(s.notification)

		if rq == nil || rs == nil || n == nil {
			continue
		}

		emitted = true

		b.pf("// %sMessage is a message sent by a protocol %s.\n", s.label, lower(s.label))
		b.pf("type %sMessage = wire.Message[%s, %s, %s, wire.ErrorDetail]\n\n",
			s.label, s.requests, s.results, s.notification)

		b.pf("// %sMessageView is the zero-copy twin of %sMessage.\n", s.label, s.label)
		b.pf("type %sMessageView = wire.Message[%s, %s, %s, wire.ErrorDetailView]\n\n",
			s.label, typeName(rq, true), typeName(rs, true), typeName(n, true))

		b.pf("// Bind%sMessage parses one inbound buffer into a %s-message view\n", s.label, lower(s.label))
		b.pf("// bound to its backing buffer.\n")
		b.pf("func Bind%sMessage(buf []byte) (*wire.Document[%sMessageView], error) {\n", s.label, s.label)
		b.pf("\treturn wire.Bind[%sMessageView](buf)\n}\n\n", s.label)
	}

	if !emitted {
		return nil
	}

	return b.buf.Bytes()
}

func lower(s string) string {
	if s == "" {
		return s
	}

	return string(s[0]|0x20) + s[1:]
}
