// Package fonts provides the typefaces used by the raster renderers.
//
// The Go fonts ship inside golang.org/x/image, so labels, titles and
// legends render identically on every machine without a system font lookup.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight selects a typeface.
type Weight int

const (
	Regular Weight = iota
	Bold
)

var (
	parseOnce sync.Once
	parsed    map[Weight]*truetype.Font
	parseErr  error

	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

type faceKey struct {
	weight Weight
	size   float64
}

func load() {
	parsed = make(map[Weight]*truetype.Font, 2)
	for w, ttf := range map[Weight][]byte{Regular: goregular.TTF, Bold: gobold.TTF} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			parseErr = fmt.Errorf("parse font: %w", err)
			return
		}
		parsed[w] = f
	}
}

// Face returns a cached face of the given weight and point size.
func Face(w Weight, size float64) (font.Face, error) {
	parseOnce.Do(load)
	if parseErr != nil {
		return nil, parseErr
	}
	f, ok := parsed[w]
	if !ok {
		return nil, fmt.Errorf("unknown font weight %d", w)
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	key := faceKey{weight: w, size: size}
	if face, ok := faces[key]; ok {
		return face, nil
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	faces[key] = face
	return face, nil
}
