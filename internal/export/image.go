package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

const (
	ImageWidth  = 800
	ImageHeight = 600
)

var (
	background   = mustHex("#1a1a1a")
	textPrimary  = mustHex("#ffffff")
	textMuted    = mustHex("#9ca3af")
	textRow      = mustHex("#e5e7eb")
	textFooter   = mustHex("#6b7280")
	statColors   = [3]colorful.Color{mustHex("#3b82f6"), mustHex("#f59e0b"), mustHex("#10b981")}
	statColumnsX = [3]int{100, 300, 500}
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// habitColor parses a habit's color, falling back to the default palette entry.
func habitColor(hex string) colorful.Color {
	if c, err := colorful.Hex(hex); err == nil {
		return c
	}
	return mustHex(constants.DefaultHabitColor)
}

type faceSet struct {
	title, name, small, stat, heading, row, footer font.Face
}

type fonts struct {
	regular, bold *opentype.Font
}

var parseFonts = sync.OnceValues(func() (fonts, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fonts{}, fmt.Errorf("parsing regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return fonts{}, fmt.Errorf("parsing bold font: %w", err)
	}
	return fonts{regular: regular, bold: bold}, nil
})

// newFaces builds the faces for one render. Faces cache glyphs and are not
// safe for concurrent use, so they are never shared between renders.
func newFaces() (*faceSet, error) {
	f, err := parseFonts()
	if err != nil {
		return nil, err
	}
	face := func(src *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	fs := &faceSet{}
	if fs.title, err = face(f.bold, 32); err != nil {
		return nil, err
	}
	if fs.name, err = face(f.regular, 18); err != nil {
		return nil, err
	}
	if fs.small, err = face(f.regular, 14); err != nil {
		return nil, err
	}
	if fs.stat, err = face(f.bold, 36); err != nil {
		return nil, err
	}
	if fs.heading, err = face(f.bold, 20); err != nil {
		return nil, err
	}
	if fs.row, err = face(f.regular, 16); err != nil {
		return nil, err
	}
	if fs.footer, err = face(f.regular, 12); err != nil {
		return nil, err
	}
	return fs, nil
}

type canvas struct {
	img *image.RGBA
}

// text draws s with its baseline at y. If centered, x is the horizontal center.
func (c canvas) text(face font.Face, col color.Color, s string, x, y int, centered bool) {
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: face}
	start := fixed.I(x)
	if centered {
		start -= d.MeasureString(s) / 2
	}
	d.Dot = fixed.Point26_6{X: start, Y: fixed.I(y)}
	d.DrawString(s)
}

// RenderSummaryPNG draws the 800x600 progress card for profile and habits.
func RenderSummaryPNG(w io.Writer, profile models.Profile, habits []models.Habit, now time.Time) error {
	faces, err := newFaces()
	if err != nil {
		return err
	}
	sum := Summarize(habits)

	img := image.NewRGBA(image.Rect(0, 0, ImageWidth, ImageHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	c := canvas{img: img}
	mid := ImageWidth / 2

	name := profile.Name
	if name == "" {
		name = "User"
	}
	c.text(faces.title, textPrimary, "My Habit Progress", mid, 60, true)
	c.text(faces.name, textMuted, name, mid, 90, true)
	c.text(faces.small, textMuted, now.Format("January 2, 2006"), mid, 115, true)

	values := [3]int{sum.ActiveCount, sum.TotalCurrentStreak, sum.MaxBestStreak}
	labels := [3]string{"Active Habits", "Total Streak Days", "Best Streak"}
	for i := range values {
		c.text(faces.stat, statColors[i], strconv.Itoa(values[i]), statColumnsX[i], 180, true)
		c.text(faces.small, textMuted, labels[i], statColumnsX[i], 200, true)
	}

	if len(sum.Streaking) > 0 {
		c.text(faces.heading, textPrimary, "Current Streaks:", 100, 260, false)
		for i, h := range sum.Streaking {
			y := 290 + i*25
			c.text(faces.row, textRow, h.Name, 120, y, false)
			c.text(faces.row, habitColor(h.Color), fmt.Sprintf("%d days", h.CurrentStreak), 500, y, false)
		}
	}

	c.text(faces.footer, textFooter, "Generated by Habit Tracker", mid, ImageHeight-30, true)

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding summary image: %w", err)
	}
	return nil
}
