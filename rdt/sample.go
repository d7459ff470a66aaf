package rdt

// sampleUV computes the feature response for one candidate (u,v) pair
// at one sample pixel: probe two offset pixels (scaled to pixel space
// by the depth at the origin pixel) and return the depth difference.
// A probe that lands outside the frame reads bgDepth instead of the
// raster, matching infer_labels.cc's in-bounds ternary rather than
// clamping onto the border, since a border read would smear a real
// depth into what should look like background. depthRaster dispatch
// keeps this one function working for both Half and float32 corpora
// rather than requiring a generic instantiation per raster kind, since
// sample_uv is already on the hot path and an interface call here
// costs one indirect jump.
func sampleUV(img *trainingImage, x, y int, off UVOffset, ppm, bgDepth float32) float32 {
	origin := img.depthAt(x, y)
	scale := ppm / origin

	d1 := probeDepth(img, x, y, off.U1, off.V1, scale, bgDepth)
	d2 := probeDepth(img, x, y, off.U2, off.V2, scale, bgDepth)
	return d1 - d2
}

// probeDepth reads the raster at (x,y) offset by (u,v) scaled into
// pixel space, or bgDepth if the offset pixel falls outside the frame.
func probeDepth(img *trainingImage, x, y int, u, v, scale, bgDepth float32) float32 {
	px := x + int(u*scale)
	py := y + int(v*scale)
	if px < 0 || px >= img.Width || py < 0 || py >= img.Height {
		return bgDepth
	}
	return img.depthAt(px, py)
}
