package rdt

// PixelSample is one training example drawn from the corpus: a pixel
// location inside a particular image, the depth at that pixel, and the
// ground-truth label used to build the label histogram once the pixel
// reaches a leaf.
type PixelSample struct {
	ImageIdx int
	X, Y     int
	Label    uint8
	Depth    float32 // depth at (x,y) when drawn; sampleUV reads the origin depth from the raster, not from here
}

// trainingImage pairs a depth raster with its label raster and the
// geometry sample_uv needs to reproject an offset back into pixel
// space, following the per-image record gm_rdt_context_train builds
// from the npz image list.
type trainingImage struct {
	Width, Height int
	Depth         depthRaster
	Labels        []uint8
}

func (img *trainingImage) labelAt(x, y int) uint8 {
	return img.Labels[y*img.Width+x]
}

func (img *trainingImage) depthAt(x, y int) float32 {
	return img.Depth.at(y*img.Width + x)
}

// drawSamples draws nPixels samples from each image independently,
// uniformly over that image's own in-body pixels (label != bgLabel),
// following generate_randomized_sample_points: a flat rejection scan
// over the whole corpus would draw proportionally more samples from
// bodies that fill more of the frame, the exact body-size bias a
// per-image draw avoids. Every image with at least one in-body pixel
// contributes exactly nPixels entries regardless of how large its body
// is; an empty or all-background image contributes none.
func drawSamples(rng randSource, images []trainingImage, nPixels int, bgLabel uint8) []PixelSample {
	samples := make([]PixelSample, 0, len(images)*nPixels)
	for imgIdx := range images {
		img := &images[imgIdx]
		if img.Width == 0 || img.Height == 0 {
			continue
		}
		inBody := inBodyPixels(img, bgLabel)
		if len(inBody) == 0 {
			// No usable pixels in this image (e.g. an all-background
			// frame); nPixels samples simply can't be drawn from it.
			continue
		}
		for i := 0; i < nPixels; i++ {
			pick := inBody[int(rng.Float64()*float64(len(inBody)))]
			x, y := pick%img.Width, pick/img.Width
			samples = append(samples, PixelSample{
				ImageIdx: imgIdx,
				X:        x,
				Y:        y,
				Label:    img.labelAt(x, y),
				Depth:    img.depthAt(x, y),
			})
		}
	}
	return samples
}

// inBodyPixels lists every raster index whose label isn't bgLabel, the
// per-image candidate pool drawSamples indexes into.
func inBodyPixels(img *trainingImage, bgLabel uint8) []int {
	inBody := make([]int, 0, len(img.Labels))
	for i, l := range img.Labels {
		if l != bgLabel {
			inBody = append(inBody, i)
		}
	}
	return inBody
}

// randSource is the minimal interface drawSamples needs; *rand.Rand
// satisfies it directly, and tests can substitute a deterministic
// stub without pulling in math/rand's full surface.
type randSource interface {
	Float64() float64
}
