package imagestore

import (
	"fmt"
	"path/filepath"
	"time"
)

// FinalFilename is the file the best individual is written to at the end of
// a run.
const FinalFilename = "final_result.png"

// CheckpointName returns the checkpoint path for generation captured at t:
//
//	<dir>/intermediate_gen_00042_20260102_150405_123.png
func CheckpointName(dir string, generation int, t time.Time) string {
	stamp := fmt.Sprintf("%s_%03d", t.Format("20060102_150405"), t.Nanosecond()/int(time.Millisecond))
	return filepath.Join(dir, fmt.Sprintf("intermediate_gen_%05d_%s.png", generation, stamp))
}

// FinalName returns the path of the final result inside dir.
func FinalName(dir string) string {
	return filepath.Join(dir, FinalFilename)
}
