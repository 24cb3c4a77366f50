// Package chart draws the static PNG charts of the analytics report:
// time-series lines, stacked monthly bars, category bars and a
// weekday-by-hour heatmap.
//
// Charts are rasterized in memory with gg and the fonts package. Every
// drawing function returns [ErrEmpty] instead of an image when it has no
// data, so callers can skip a chart without inspecting the dataset.
package chart
