// Package pipeline provides the parse → layout → render pipeline behind the
// flowmap CLI.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read an input document (JSON, YAML or TOML)
//  2. Layout: Compute the flow layout and run edge bundling to convergence
//  3. Render: Produce debug previews (SVG, DOT) when formats are requested
//
// Layout and render results are cached by content hash, so laying out the
// same document with the same options twice skips the simulation.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.Options{Input: "flows.yaml"})
//	if err != nil {
//	    return err
//	}
//	data, _ := graph.MarshalLayout(result.Layout)
//
// Stages can also be run one by one, for example to adjust the document's
// layout options between parsing and layout:
//
//	doc, err := runner.Parse(ctx, opts)
//	doc.Options.EdgeBundling = true
//	l, err := runner.Layout(ctx, doc, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
//
// # Concurrency
//
// A Runner owns one layout engine. Starting a layout cancels the bundling
// simulation of the previous one, whose Layout call then fails with a
// CANCELLED error. Use one Runner per independent consumer.
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowmap/pkg/bundle"
	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/graph"
	"github.com/matzehuels/flowmap/pkg/render/nodelink"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI
// =============================================================================

// Render formats.
const (
	FormatSVG = nodelink.FormatSVG
	FormatDOT = nodelink.FormatDOT
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatDOT: true,
}

// DefaultTickInterval paces the simulation in watch mode so progress is
// visible; batch runs use zero and tick as fast as possible.
const DefaultTickInterval = 16 * time.Millisecond

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. Layout options live in the input
// document; adjust Document.Options to override them.
type Options struct {
	// Input is the path of the document to parse. Ignored when Document is set.
	Input string `json:"input,omitempty"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Formats lists render formats. Empty skips the render stage.
	Formats []string `json:"formats,omitempty"`

	// Render options
	Detailed  bool `json:"detailed,omitempty"`
	Midpoints bool `json:"midpoints,omitempty"`

	// Runtime options (not serialized)
	Document *graph.Document  `json:"-"`
	Logger   *log.Logger      `json:"-"`
	OnTick   func(bundle.Tick) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the parsed input.
	Document *graph.Document

	// InputHash is the content hash of the document's nodes and links.
	InputHash string

	// Layout is the serialized layout, bundled paths included.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Ticks      int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a render format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return flowerr.New(flowerr.ErrCodeUnsupported, "invalid format: %q (must be one of: svg, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks that an input is available.
func (o *Options) ValidateForParse() error {
	if o.Document == nil {
		if o.Input == "" {
			return flowerr.New(flowerr.ErrCodeInvalidInput, "input or document is required")
		}
		if err := flowerr.ValidatePath(o.Input); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// ValidateForRender deduplicates and checks the render formats.
func (o *Options) ValidateForRender() error {
	o.setLogger()
	o.Formats = slices.Compact(slices.Sorted(slices.Values(o.Formats)))
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// RenderOptions returns the nodelink options for the render stage.
func (o *Options) RenderOptions() nodelink.Options {
	return nodelink.Options{Detailed: o.Detailed, Midpoints: o.Midpoints}
}
