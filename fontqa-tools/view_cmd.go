package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/fontqa/shaping/collide"
	"github.com/thatisuday/commando"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/vector"
)

func runViewCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args)
	buf := mustShape(f, args, flags)
	if len(buf) == 0 {
		fatalf("shaping produced no glyphs")
	}
	outPath := flagString(flags, "output")
	if outPath == "" {
		fatalf("output path is empty")
	}
	var err error
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".png":
		ppem := mustFlagInt(flags, "ppem")
		width := mustFlagInt(flags, "width")
		height := mustFlagInt(flags, "height")
		if ppem <= 0 {
			fatalf("--ppem must be > 0")
		}
		if width <= 0 || height <= 0 {
			fatalf("--width and --height must be > 0")
		}
		err = renderBufferPNG(f, buf, outPath, width, height, ppem, mustFlagBool(flags, "show-bboxes"))
	case ".svg":
		err = renderBufferSVG(f, buf, outPath, mustFlagBool(flags, "collisions"))
	default:
		fatalf("cannot tell image format from %q, use .svg or .png", outPath)
	}
	if err != nil {
		fatalf("render failed: %v", err)
	}
	fmt.Printf("wrote %s (glyphs=%d)\n", outPath, len(buf))
}

func renderBufferSVG(f *shaper.Font, buf shaper.Buffer, outPath string, collisions bool) error {
	var svg string
	var err error
	if collisions {
		d := collide.New(f, collide.DefaultOptions())
		_, found := d.Check(buf)
		if len(found) > 0 {
			fmt.Println(collide.Describe(found))
		}
		svg, err = d.DrawOverlaps(buf, found)
	} else {
		svg, err = f.BufferToSVG(buf)
	}
	if err != nil {
		return err
	}
	return writeOutput(outPath, func(w *os.File) error {
		_, err := w.WriteString(svg)
		return err
	})
}

// renderBufferPNG rasterizes a shaped buffer, centered on a white canvas.
func renderBufferPNG(f *shaper.Font, buf shaper.Buffer, outPath string, width, height, ppem int, showBBoxes bool) error {
	upem := float32(f.UnitsPerEm())
	if upem <= 0 {
		return errors.New("invalid units-per-em")
	}
	scale := float32(ppem) / upem

	type glyphPath struct {
		segs   sfnt.Segments
		dx, dy float32
	}
	var (
		paths                  []glyphPath
		minX, minY, maxX, maxY float32
		have                   bool
	)
	origins := buf.Origins()
	for i, g := range buf {
		segs, err := f.Outline(g.GID)
		if err != nil {
			if errors.Is(err, shaper.ErrNoOutlines) {
				return err
			}
			continue
		}
		if len(segs) == 0 {
			continue
		}
		// outlines are y-down, origins y-up
		p := glyphPath{segs: segs, dx: float32(origins[i].X) * scale, dy: -float32(origins[i].Y) * scale}
		paths = append(paths, p)
		b := segs.Bounds()
		x0, y0 := p.dx+float32(b.Min.X)/64*scale, p.dy+float32(b.Min.Y)/64*scale
		x1, y1 := p.dx+float32(b.Max.X)/64*scale, p.dy+float32(b.Max.Y)/64*scale
		if !have {
			minX, minY, maxX, maxY, have = x0, y0, x1, y1, true
			continue
		}
		minX, minY = min(minX, x0), min(minY, y0)
		maxX, maxY = max(maxX, x1), max(maxY, y1)
	}
	if len(paths) == 0 {
		return errors.New("no drawable glyph paths found")
	}
	shiftX := (float32(width)-(maxX-minX))/2 - minX
	shiftY := (float32(height)-(maxY-minY))/2 - minY

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)
	rast := vector.NewRasterizer(width, height)
	rast.DrawOp = draw.Over
	for _, p := range paths {
		for _, seg := range p.segs {
			var coords [6]float32
			for k := range 3 {
				coords[2*k] = float32(seg.Args[k].X) / 64
				coords[2*k+1] = float32(seg.Args[k].Y) / 64
			}
			at := func(k int) (float32, float32) {
				return shiftX + p.dx + coords[2*k]*scale, shiftY + p.dy + coords[2*k+1]*scale
			}
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				rast.ClosePath()
				rast.MoveTo(at(0))
			case sfnt.SegmentOpLineTo:
				rast.LineTo(at(0))
			case sfnt.SegmentOpQuadTo:
				x0, y0 := at(0)
				x1, y1 := at(1)
				rast.QuadTo(x0, y0, x1, y1)
			case sfnt.SegmentOpCubeTo:
				x0, y0 := at(0)
				x1, y1 := at(1)
				x2, y2 := at(2)
				rast.CubeTo(x0, y0, x1, y1, x2, y2)
			}
		}
		rast.ClosePath()
	}
	rast.Draw(img, img.Bounds(), image.Black, image.Point{})
	if showBBoxes {
		for i, g := range buf {
			box, ok := f.InkBox(g.GID)
			if !ok {
				continue
			}
			ox := shiftX + float32(origins[i].X)*scale
			oy := shiftY - float32(origins[i].Y)*scale
			drawRectOutline(img,
				int(ox+float32(box.LLx)*scale), int(oy-float32(box.URy)*scale),
				int(ox+float32(box.URx)*scale)+1, int(oy-float32(box.LLy)*scale)+1,
				color.RGBA{255, 0, 0, 255})
		}
	}
	return writeOutput(outPath, func(w *os.File) error {
		return png.Encode(w, img)
	})
}

func writeOutput(outPath string, write func(*os.File) error) error {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	w, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	if err := write(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func drawRectOutline(img *image.RGBA, minX, minY, maxX, maxY int, c color.RGBA) {
	r := image.Rect(minX, minY, maxX, maxY).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}
