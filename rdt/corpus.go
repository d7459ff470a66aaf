package rdt

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/sbinet/npyio"
	"github.com/spf13/afero"
)

// CorpusMeta is the fixed geometry every image in a corpus shares,
// returned up front so the trainer can size its packed tree and
// histograms before touching a single pixel.
type CorpusMeta struct {
	Width, Height int
	VerticalFOV   float32
	NLabels       int
	BgLabel       uint8
	NImages       int
}

// Corpus is the ingest collaborator of spec.md §6: given a data
// directory and an index name it hands back the fixed geometry and
// lets the trainer pull individual images lazily rather than forcing
// the whole corpus into memory at once.
type Corpus interface {
	Meta() (CorpusMeta, error)
	Image(i int) (trainingImage, error)
}

// NpyCorpus reads depth/label rasters from a directory of `.npy`
// files, following the teacher's ReadEMatrix/ReadNpy pair but
// returning errors instead of calling log.Fatal, since library code
// cannot terminate its caller's process.
type NpyCorpus struct {
	fs       afero.Fs
	dataDir  string
	index    corpusIndex
	meta     CorpusMeta
}

// corpusIndex is the small manifest listing each image's depth/label
// file pair; real corpora store this alongside the rasters as
// `<index_name>.json`.
type corpusIndex struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	VerticalFOV float32  `json:"vertical_fov"`
	NLabels     int      `json:"n_labels"`
	BgLabel     uint8    `json:"bg_label"`
	DepthFiles  []string `json:"depth_files"`
	LabelFiles  []string `json:"label_files"`
}

// OpenNpyCorpus loads the manifest for indexName out of dataDir on fs,
// failing fast if the manifest is missing or malformed so training
// never starts threads against a broken corpus.
func OpenNpyCorpus(fs afero.Fs, dataDir, indexName string) (*NpyCorpus, error) {
	idx, err := readCorpusIndex(fs, filepath.Join(dataDir, indexName+".json"))
	if err != nil {
		return nil, newError(CorpusLoad, "reading corpus index", err)
	}
	if len(idx.DepthFiles) != len(idx.LabelFiles) {
		return nil, newError(CorpusLoad, "depth/label file count mismatch", nil)
	}
	return &NpyCorpus{
		fs:      fs,
		dataDir: dataDir,
		index:   idx,
		meta: CorpusMeta{
			Width:       idx.Width,
			Height:      idx.Height,
			VerticalFOV: idx.VerticalFOV,
			NLabels:     idx.NLabels,
			BgLabel:     idx.BgLabel,
			NImages:     len(idx.DepthFiles),
		},
	}, nil
}

func readCorpusIndex(fs afero.Fs, path string) (corpusIndex, error) {
	f, err := fs.Open(path)
	if err != nil {
		return corpusIndex{}, err
	}
	defer f.Close()

	var idx corpusIndex
	if err := json.NewDecoder(f).Decode(&idx); err != nil {
		return corpusIndex{}, err
	}
	return idx, nil
}

func (c *NpyCorpus) Meta() (CorpusMeta, error) { return c.meta, nil }

func (c *NpyCorpus) Image(i int) (trainingImage, error) {
	if i < 0 || i >= len(c.index.DepthFiles) {
		return trainingImage{}, newError(CorpusLoad, fmt.Sprintf("image index %d out of range", i), nil)
	}
	depth, err := c.readDepth(c.index.DepthFiles[i])
	if err != nil {
		return trainingImage{}, newError(CorpusLoad, "reading depth raster", err)
	}
	labels, err := c.readLabels(c.index.LabelFiles[i])
	if err != nil {
		return trainingImage{}, newError(CorpusLoad, "reading label raster", err)
	}
	if len(labels) != c.meta.Width*c.meta.Height {
		return trainingImage{}, newError(CorpusLoad, "label raster size mismatch", nil)
	}
	for _, l := range labels {
		if int(l) >= c.meta.NLabels {
			return trainingImage{}, newError(LabelOutOfRange, fmt.Sprintf("label %d >= n_labels %d", l, c.meta.NLabels), nil)
		}
	}
	return trainingImage{
		Width:  c.meta.Width,
		Height: c.meta.Height,
		Depth:  depth,
		Labels: labels,
	}, nil
}

func (c *NpyCorpus) readDepth(name string) (depthRaster, error) {
	f, err := c.fs.Open(filepath.Join(c.dataDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, err
	}
	switch r.Header.Descr.Type {
	case "<f4", "float32":
		vals := make([]float32, numel(r.Header.Descr.Shape))
		if err := r.Read(&vals); err != nil {
			return nil, err
		}
		return float32Raster(vals), nil
	default:
		// half-precision rasters are stored as raw uint16 binary16
		// words; npyio has no native half dtype, so they round-trip
		// through uint16 and get reinterpreted as Half here.
		vals := make([]uint16, numel(r.Header.Descr.Shape))
		if err := r.Read(&vals); err != nil {
			return nil, err
		}
		half := make(halfRaster, len(vals))
		for i, v := range vals {
			half[i] = Half(v)
		}
		return half, nil
	}
}

func (c *NpyCorpus) readLabels(name string) ([]uint8, error) {
	f, err := c.fs.Open(filepath.Join(c.dataDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, err
	}
	vals := make([]uint8, numel(r.Header.Descr.Shape))
	if err := r.Read(&vals); err != nil {
		return nil, err
	}
	return vals, nil
}

func numel(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// MemCorpus is an in-memory Corpus used by tests, avoiding any
// filesystem or npy round trip.
type MemCorpus struct {
	meta   CorpusMeta
	Images []trainingImage
}

func NewMemCorpus(meta CorpusMeta, images []trainingImage) *MemCorpus {
	meta.NImages = len(images)
	return &MemCorpus{meta: meta, Images: images}
}

func (c *MemCorpus) Meta() (CorpusMeta, error) { return c.meta, nil }

func (c *MemCorpus) Image(i int) (trainingImage, error) {
	if i < 0 || i >= len(c.Images) {
		return trainingImage{}, newError(CorpusLoad, "image index out of range", nil)
	}
	return c.Images[i], nil
}
