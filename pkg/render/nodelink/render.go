package nodelink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ghgraph/pkg/digraph"
	"github.com/matzehuels/ghgraph/pkg/layout"
	"github.com/matzehuels/ghgraph/pkg/model"
	"github.com/matzehuels/ghgraph/pkg/observability"
	"github.com/matzehuels/ghgraph/pkg/render"
)

const (
	DefaultWidth             = 2400
	DefaultHeight            = 2400
	DefaultClusterWidth      = 1600
	DefaultClusterHeight     = 1600
	DefaultLabelLimit        = 80
	DefaultClusterLabelLimit = 50
	DefaultLabelLength       = 25
	DefaultSeed              = uint64(42)
)

// Format is an output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatDOT Format = "dot"
	FormatPDF Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatPNG, FormatSVG, FormatDOT, FormatPDF}

var (
	// ErrUnsupportedFormat is returned for an unknown format, or one whose
	// capability is switched off.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ParseFormat validates s.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be one of: png, svg, dot, pdf)", ErrUnsupportedFormat, s)
}

// Capabilities switches optional rendering features.
type Capabilities struct {
	// Raster enables in-process PNG encoding.
	Raster bool
	// Declutter moves overlapping labels apart and boxes them. When off,
	// labels are drawn centred on their nodes.
	Declutter bool
	// Graphviz enables SVG output.
	Graphviz bool
	// RSVG enables PDF output through rsvg-convert, and PNG output when
	// Raster is off.
	RSVG bool
}

// DetectCapabilities enables every in-process feature and probes the host
// for rsvg-convert.
func DetectCapabilities() Capabilities {
	return Capabilities{Raster: true, Declutter: true, Graphviz: true, RSVG: render.RSVGAvailable()}
}

func (c Capabilities) supports(f Format) bool {
	switch f {
	case FormatPNG:
		return c.Raster || (c.Graphviz && c.RSVG)
	case FormatSVG:
		return c.Graphviz
	case FormatDOT:
		return true
	case FormatPDF:
		return c.Graphviz && c.RSVG
	}
	return false
}

// Options configures Render and RenderClusters. Zero values take defaults.
type Options struct {
	Width, Height int
	Formats       []Format

	// LabelLimit is the node count up to which every node of a whole-graph
	// drawing is labelled; ClusterLabelLimit is the same for clusters.
	LabelLimit        int
	ClusterLabelLimit int
	LabelLength       int

	Seed       uint64
	Jitter     float64
	Iterations int

	// Only restricts RenderClusters to these 1-based cluster indices.
	Only []int

	Capabilities Capabilities
	Logger       *log.Logger
}

// SetDefaults fills zero fields. Zero Capabilities are replaced by
// [DetectCapabilities].
func (o *Options) SetDefaults() {
	if o.Capabilities == (Capabilities{}) {
		o.Capabilities = DetectCapabilities()
	}
	if len(o.Formats) == 0 {
		o.Formats = []Format{FormatPNG}
	}
	if o.LabelLimit <= 0 {
		o.LabelLimit = DefaultLabelLimit
	}
	if o.ClusterLabelLimit <= 0 {
		o.ClusterLabelLimit = DefaultClusterLabelLimit
	}
	if o.LabelLength <= 0 {
		o.LabelLength = DefaultLabelLength
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Jitter == 0 {
		o.Jitter = layout.DefaultJitter
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks every requested format against the capabilities.
func (o *Options) Validate() error {
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("invalid size %dx%d", o.Width, o.Height)
	}
	for _, f := range o.Formats {
		if _, err := ParseFormat(string(f)); err != nil {
			return err
		}
		if !o.Capabilities.supports(f) {
			return fmt.Errorf("%w: %s is not available on this host", ErrUnsupportedFormat, f)
		}
	}
	return nil
}

func (o Options) size(cluster bool) (int, int) {
	w, h := o.Width, o.Height
	if cluster {
		w, h = cmpOr(w, DefaultClusterWidth), cmpOr(h, DefaultClusterHeight)
	} else {
		w, h = cmpOr(w, DefaultWidth), cmpOr(h, DefaultHeight)
	}
	return w, h
}

func cmpOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// Manifest records the files written by one render call.
type Manifest struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Files     []File    `json:"files"`
}

// File is one written image.
type File struct {
	Path    string `json:"path"`
	Format  Format `json:"format"`
	Cluster int    `json:"cluster,omitempty"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}

func newManifest() *Manifest {
	return &Manifest{RunID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

// Paths returns the written file paths.
func (m *Manifest) Paths() []string {
	out := make([]string, len(m.Files))
	for i, f := range m.Files {
		out[i] = f.Path
	}
	return out
}

// Render draws g into a single image per format. With one format the image
// is written to path; with several, path's extension is replaced by each
// format's. An empty graph writes nothing.
func Render(ctx context.Context, g *model.Graph, x *Exploration, path string, opts Options) (*Manifest, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m := newManifest()

	d := ToDigraph(g, x)
	if d.NodeCount() == 0 {
		opts.Logger.Warn("graph is empty, nothing to render", "path", path)
		return m, nil
	}

	res := positions(ctx, d, opts)
	title, subtitle := graphTitle(g)
	w, h := opts.size(false)
	params := sceneParams{
		width:     w,
		height:    h,
		title:     title,
		subtitle:  subtitle,
		labels:    selectLabels(d, opts.LabelLimit, opts.LabelLength),
		legend:    legend(d, false),
		declutter: opts.Capabilities.Declutter,
	}

	files, err := draw(ctx, d, res.Positions, params, outputPaths(path, opts.Formats), opts)
	if err != nil {
		opts.Logger.Error("render failed", "path", path, "err", err)
		return nil, err
	}
	m.Files = append(m.Files, files...)
	opts.Logger.Info("graph rendered", "path", path, "nodes", d.NodeCount(), "edges", d.EdgeCount())
	return m, nil
}

// RenderClusters draws one image per weakly connected component of g into
// dir, largest component first. Files are named
// {prefix}_cluster_{NN}.{format}, or cluster_{NN}.{format} without a prefix.
// When a cluster fails, the files already written by this call are removed.
func RenderClusters(ctx context.Context, g *model.Graph, x *Exploration, dir, prefix string, opts Options) (*Manifest, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m := newManifest()

	d := ToDigraph(g, x)
	if d.NodeCount() == 0 {
		opts.Logger.Warn("graph is empty, no clusters to render", "dir", dir)
		return m, nil
	}

	comps := d.WeakComponents()
	opts.Logger.Info("rendering clusters", "count", len(comps), "dir", dir)
	w, h := opts.size(true)

	for i, ids := range comps {
		if len(opts.Only) > 0 && !slices.Contains(opts.Only, i+1) {
			continue
		}
		sub := d.Subgraph(ids)
		res := positions(ctx, sub, opts)
		title, subtitle := clusterTitle(i+1, len(comps), sub)
		params := sceneParams{
			width:     w,
			height:    h,
			title:     title,
			subtitle:  subtitle,
			labels:    selectLabels(sub, opts.ClusterLabelLimit, opts.LabelLength),
			legend:    legend(sub, true),
			declutter: opts.Capabilities.Declutter,
		}

		base := filepath.Join(dir, ClusterFileName(prefix, i+1, ""))
		files, err := draw(ctx, sub, res.Positions, params, outputPaths(base, opts.Formats), opts)
		if err != nil {
			opts.Logger.Error("cluster render failed", "cluster", i+1, "err", err)
			for _, p := range m.Paths() {
				_ = os.Remove(p)
			}
			return nil, fmt.Errorf("cluster %d: %w", i+1, err)
		}
		for j := range files {
			files[j].Cluster = i + 1
		}
		m.Files = append(m.Files, files...)
		opts.Logger.Debug("cluster rendered", "cluster", i+1, "nodes", sub.NodeCount(), "edges", sub.EdgeCount())
	}
	return m, nil
}

// ClusterInfo summarizes one weakly connected component. Members holds
// display names.
type ClusterInfo struct {
	Index   int      `json:"index"`
	Nodes   int      `json:"nodes"`
	Edges   int      `json:"edges"`
	Members []string `json:"members"`
}

// Clusters lists the weakly connected components of g in the order
// RenderClusters draws them.
func Clusters(g *model.Graph, x *Exploration) []ClusterInfo {
	d := ToDigraph(g, x)
	comps := d.WeakComponents()
	out := make([]ClusterInfo, len(comps))
	for i, ids := range comps {
		sub := d.Subgraph(ids)
		members := make([]string, 0, sub.NodeCount())
		for _, n := range sub.Nodes() {
			members = append(members, n.Label())
		}
		out[i] = ClusterInfo{Index: i + 1, Nodes: sub.NodeCount(), Edges: sub.EdgeCount(), Members: members}
	}
	return out
}

// ClusterFileName returns the file name of cluster i (1-based). An empty
// ext yields the name without extension.
func ClusterFileName(prefix string, i int, ext Format) string {
	name := fmt.Sprintf("cluster_%02d", i)
	if prefix != "" {
		name = prefix + "_" + name
	}
	if ext != "" {
		name += "." + string(ext)
	}
	return name
}

func outputPaths(path string, formats []Format) map[Format]string {
	out := make(map[Format]string, len(formats))
	ext := filepath.Ext(path)
	if len(formats) == 1 && ext != "" {
		out[formats[0]] = path
		return out
	}
	base := strings.TrimSuffix(path, ext)
	for _, f := range formats {
		out[f] = base + "." + string(f)
	}
	return out
}

func positions(ctx context.Context, d *digraph.Graph, opts Options) layout.Result {
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, d.NodeCount())
	res := layout.Pack(d, layout.Options{Seed: opts.Seed, Iterations: opts.Iterations, Jitter: opts.Jitter})
	for i, c := range res.Components {
		if c.Method == layout.MethodRandom {
			opts.Logger.Debug("spectral layout unavailable, used random start", "component", i+1, "nodes", len(c.IDs))
		}
	}
	observability.Pipeline().OnLayoutComplete(ctx, time.Since(start), nil)
	return res
}

// draw encodes every format in memory first and writes only when all
// encodings succeeded.
func draw(ctx context.Context, d *digraph.Graph, pos map[string]layout.Point, params sceneParams, paths map[Format]string, opts Options) (files []File, err error) {
	formats := make([]string, 0, len(opts.Formats))
	for _, f := range opts.Formats {
		formats = append(formats, string(f))
	}
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
	}()

	scene, err := buildScene(d, pos, params)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	encoded, err := Encode(ctx, scene, opts.Formats, opts.Capabilities)
	if err != nil {
		return nil, err
	}
	for _, f := range opts.Formats {
		if err := render.WriteFile(paths[f], encoded[f]); err != nil {
			return nil, fmt.Errorf("write %s: %w", paths[f], err)
		}
		files = append(files, File{Path: paths[f], Format: f, Nodes: d.NodeCount(), Edges: d.EdgeCount()})
	}
	return files, nil
}

// Encode renders s in every requested format.
func Encode(ctx context.Context, s *Scene, formats []Format, caps Capabilities) (map[Format][]byte, error) {
	out := make(map[Format][]byte, len(formats))
	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = RenderSVG(ctx, ToDOT(s))
		return svg, err
	}

	for _, f := range formats {
		var (
			data []byte
			err  error
		)
		switch {
		case f == FormatPNG && caps.Raster:
			data, err = EncodePNG(s)
		case f == FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, 1)
			}
		case f == FormatSVG:
			data, err = svgOnce()
		case f == FormatDOT:
			data = []byte(ToDOT(s))
		case f == FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		default:
			err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f, err)
		}
		out[f] = data
	}
	return out, nil
}
