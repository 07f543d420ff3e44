package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

func countOn(img *image1bit.VerticalLSB, x0, x1, y0, y1 int) int {
	n := 0
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestRenderAffect_Waiting(t *testing.T) {
	img := renderAffect(displaySnapshot{})
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
	assert.Positive(t, countOn(img, 0, 128, 0, 64))
	// nothing below the two text lines, so no bars
	assert.Zero(t, countOn(img, 0, 128, 45, 64))
}

func TestRenderAffect_BarsFollowState(t *testing.T) {
	img := renderAffect(displaySnapshot{
		emotion:     affect.DetectedEmotion{Emotion: affect.EmotionStressed, Confidence: 0.9},
		haveEmotion: true,
		state:       affect.AffectiveState{Arousal: 1, Valence: 0, Stress: 0.5, Focus: 0.5},
		haveState:   true,
	})

	// interior of each bar: 4 rows high, barWidth-2 wide
	inner := func(row int) int {
		top := 23 + row*13 - 8
		return countOn(img, barX+1, barX+barWidth-1, top+1, top+5)
	}
	assert.Equal(t, 4*(barWidth-2), inner(0))
	assert.Zero(t, inner(1))
	assert.InDelta(t, 2*(barWidth-2), inner(2), 4)
	assert.Equal(t, inner(2), inner(3))
}

func TestDrawBar_ClampsValue(t *testing.T) {
	img, _ := newScreen()
	drawBar(img, 10, 7)
	full := countOn(img, 0, 128, 0, 64)

	img2, _ := newScreen()
	drawBar(img2, 10, 1)
	assert.Equal(t, countOn(img2, 0, 128, 0, 64), full)

	img3, _ := newScreen()
	drawBar(img3, 10, -3)
	img4, _ := newScreen()
	drawBar(img4, 10, 0)
	assert.Equal(t, countOn(img4, 0, 128, 0, 64), countOn(img3, 0, 128, 0, 64))
}
