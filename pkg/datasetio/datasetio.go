// Package datasetio reads and writes the three little-endian binary
// formats construction and evaluation binaries exchange: the input
// dataset, the k-NNG output, and the ground-truth sample file.
package datasetio

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/therealutkarshpriyadarshi/vector/pkg/knngerr"
)

// ReadDataset loads a dataset binary: a 4-byte record count header
// followed by N records of dim little-endian float32s each. The file size
// must equal exactly 4+N*dim*4 bytes; any other size is a malformed
// dataset.
func ReadDataset(path string, dim int) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, knngerr.Wrap(knngerr.Config, err, "opening dataset at %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, knngerr.Wrap(knngerr.IO, err, "statting dataset at %s", path)
	}

	r := bufio.NewReader(f)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, knngerr.Wrap(knngerr.IO, err, "reading dataset header at %s", path)
	}

	wantSize := int64(4) + int64(n)*int64(dim)*4
	if info.Size() != wantSize {
		return nil, knngerr.New(knngerr.Config, "dataset at %s has size %d, want %d for N=%d D=%d", path, info.Size(), wantSize, n, dim)
	}

	records := make([][]float32, n)
	raw := make([]byte, dim*4)
	for i := range records {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, knngerr.Wrap(knngerr.IO, err, "reading dataset record %d at %s", i, path)
		}
		coords := make([]float32, dim)
		for d := 0; d < dim; d++ {
			bits := binary.LittleEndian.Uint32(raw[d*4 : d*4+4])
			coords[d] = math.Float32frombits(bits)
		}
		records[i] = coords
	}
	return records, nil
}

// WriteKNNG writes a k-NNG output file: N records of K little-endian
// uint32 neighbor ids each, no header. neighbors[i] must already be in
// the caller's chosen emission order (max-heap drain order); datasetio
// does not reorder it.
func WriteKNNG(path string, neighbors [][]uint32) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return knngerr.Wrap(knngerr.Config, err, "creating k-NNG output at %s", path)
	}
	complete := false
	defer func() {
		f.Close()
		if !complete {
			os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	buf := make([]byte, 4)
	for i, row := range neighbors {
		for _, id := range row {
			binary.LittleEndian.PutUint32(buf, id)
			if _, err := w.Write(buf); err != nil {
				return knngerr.Wrap(knngerr.IO, err, "writing k-NNG record %d at %s", i, path)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return knngerr.Wrap(knngerr.IO, err, "flushing k-NNG output at %s", path)
	}
	complete = true
	return nil
}

// ReadKNNG reads a k-NNG file of n records with k neighbor ids each.
func ReadKNNG(path string, n, k int) ([][]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, knngerr.Wrap(knngerr.Config, err, "opening k-NNG at %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, knngerr.Wrap(knngerr.IO, err, "statting k-NNG at %s", path)
	}
	wantSize := int64(n) * int64(k) * 4
	if info.Size() != wantSize {
		return nil, knngerr.New(knngerr.Config, "k-NNG at %s has size %d, want %d for N=%d K=%d", path, info.Size(), wantSize, n, k)
	}

	r := bufio.NewReader(f)
	out := make([][]uint32, n)
	raw := make([]byte, k*4)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, knngerr.Wrap(knngerr.IO, err, "reading k-NNG record %d at %s", i, path)
		}
		row := make([]uint32, k)
		for j := 0; j < k; j++ {
			row[j] = binary.LittleEndian.Uint32(raw[j*4 : j*4+4])
		}
		out[i] = row
	}
	return out, nil
}

// GroundTruthSample is one sampled point's exhaustively-computed neighbor
// list.
type GroundTruthSample struct {
	SampleID  uint32
	Neighbors []uint32
}

// WriteGroundTruth writes a ground-truth sample file: a 4-byte sample
// count header followed by, per sample, (sample_point_id, K neighbor
// ids), all little-endian uint32.
func WriteGroundTruth(path string, samples []GroundTruthSample) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return knngerr.Wrap(knngerr.Config, err, "creating ground-truth output at %s", path)
	}
	complete := false
	defer func() {
		f.Close()
		if !complete {
			os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(samples))); err != nil {
		return knngerr.Wrap(knngerr.IO, err, "writing ground-truth header at %s", path)
	}

	buf := make([]byte, 4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf, s.SampleID)
		if _, err := w.Write(buf); err != nil {
			return knngerr.Wrap(knngerr.IO, err, "writing ground-truth sample %d id at %s", i, path)
		}
		for _, id := range s.Neighbors {
			binary.LittleEndian.PutUint32(buf, id)
			if _, err := w.Write(buf); err != nil {
				return knngerr.Wrap(knngerr.IO, err, "writing ground-truth sample %d neighbor at %s", i, path)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return knngerr.Wrap(knngerr.IO, err, "flushing ground-truth output at %s", path)
	}
	complete = true
	return nil
}

// ReadGroundTruth reads a ground-truth sample file written with k
// neighbors per sample.
func ReadGroundTruth(path string, k int) ([]GroundTruthSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, knngerr.Wrap(knngerr.Config, err, "opening ground-truth at %s", path)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var nSamples uint32
	if err := binary.Read(r, binary.LittleEndian, &nSamples); err != nil {
		return nil, knngerr.Wrap(knngerr.IO, err, "reading ground-truth header at %s", path)
	}

	samples := make([]GroundTruthSample, nSamples)
	raw := make([]byte, (k+1)*4)
	for i := range samples {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, knngerr.Wrap(knngerr.IO, err, "reading ground-truth sample %d at %s", i, path)
		}
		neighbors := make([]uint32, k)
		for j := 0; j < k; j++ {
			neighbors[j] = binary.LittleEndian.Uint32(raw[(j+1)*4 : (j+1)*4+4])
		}
		samples[i] = GroundTruthSample{
			SampleID:  binary.LittleEndian.Uint32(raw[0:4]),
			Neighbors: neighbors,
		}
	}
	return samples, nil
}
