// Package render holds helpers shared by the image renderers.
//
// [ToPDF] and [ToPNG] convert SVG through the external rsvg-convert tool
// (from librsvg); [RSVGAvailable] probes for it. [WriteFile] writes an
// encoded image atomically so a failed render never leaves a partial file.
//
// The renderers live in subpackages:
//
//   - [nodelink]: network drawings of the entity graph (PNG, SVG, DOT, PDF)
//   - [chart]: line, bar and heatmap charts for repository analytics
//
// [nodelink]: github.com/matzehuels/ghgraph/pkg/render/nodelink
// [chart]: github.com/matzehuels/ghgraph/pkg/render/chart
package render
