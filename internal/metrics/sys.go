package metrics

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

var startedAt = time.Now()

// ServiceHealth is the recipe service's /health report: process figures
// and, when recipes live in a SQLite file, the size of its directory.
type ServiceHealth struct {
	Status     string     `json:"status"`
	Uptime     string     `json:"uptime"`
	Goroutines int        `json:"goroutines"`
	HeapMB     uint64     `json:"heap_mb"`
	SysMB      uint64     `json:"sys_mb"`
	NumGC      uint32     `json:"num_gc"`
	Database   *DataUsage `json:"database,omitempty"`
}

// DataUsage is the disk taken by the recipe database directory.
type DataUsage struct {
	Path  string `json:"path"`
	Bytes uint64 `json:"bytes"`
	Size  string `json:"size"`
}

// CollectHealth builds the health report. dataPath is empty for backends
// without local files.
func CollectHealth(dataPath string) ServiceHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := ServiceHealth{
		Status:     "ok",
		Uptime:     time.Since(startedAt).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapMB:     m.HeapAlloc >> 20,
		SysMB:      m.Sys >> 20,
		NumGC:      m.NumGC,
	}
	if dataPath != "" {
		n := dirBytes(dataPath)
		h.Database = &DataUsage{Path: dataPath, Bytes: n, Size: humanize.IBytes(n)}
	}
	return h
}

func dirBytes(root string) uint64 {
	var total uint64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if info, err := d.Info(); err == nil {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}
