package overlay

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/ironsheep/cell-counter-mcp/internal/segment"
)

// StageFiles lists the images written by SaveStages.
type StageFiles struct {
	Binary  string `json:"binary"`
	Cleaned string `json:"cleaned"`
	Labeled string `json:"labeled"`
	Final   string `json:"final"`
}

// SaveStages writes the thresholded mask, the cleaned mask and both label
// maps of res into dir as <prefix>_<stage>.png.
func SaveStages(dir, prefix string, res *segment.Result) (*StageFiles, error) {
	if res == nil {
		return nil, fmt.Errorf("no result to save")
	}
	if prefix == "" {
		prefix = "cells"
	}
	files := &StageFiles{
		Binary:  filepath.Join(dir, prefix+"_binary.png"),
		Cleaned: filepath.Join(dir, prefix+"_cleaned.png"),
		Labeled: filepath.Join(dir, prefix+"_labeled.png"),
		Final:   filepath.Join(dir, prefix+"_final.png"),
	}
	stages := []struct {
		path string
		img  image.Image
	}{
		{files.Binary, MaskImage(res.Binary)},
		{files.Cleaned, MaskImage(res.Cleaned)},
		{files.Labeled, LabelImage(res.Labeled)},
		{files.Final, LabelImage(res.Final)},
	}
	for _, s := range stages {
		if err := SavePNG(s.path, s.img); err != nil {
			return nil, err
		}
	}
	return files, nil
}
