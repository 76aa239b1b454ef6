package metrics

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var startedAt = time.Now()

// Runtime is the process snapshot shown on /api/debug and in the job report.
type Runtime struct {
	HeapMB     uint64 `json:"heapMB"`
	SysMB      uint64 `json:"sysMB"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
	Uptime     string `json:"uptime"`
	DataDir    string `json:"dataDir"`
	DataBytes  int64  `json:"dataBytes"`
	DataSize   string `json:"dataSize"`
	PlanFiles  int    `json:"planFiles"`
}

// Snapshot reads memory stats and what the service keeps under dataDir.
// A missing dataDir reports zero usage.
func Snapshot(dataDir string) Runtime {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	bytes, plans := dataUsage(dataDir)
	return Runtime{
		HeapMB:     m.HeapAlloc / (1 << 20),
		SysMB:      m.Sys / (1 << 20),
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(startedAt).Round(time.Second).String(),
		DataDir:    dataDir,
		DataBytes:  bytes,
		DataSize:   humanize.IBytes(uint64(bytes)),
		PlanFiles:  plans,
	}
}

// dataUsage sums file sizes and counts stored plan files (plan_YYYY-MM-DD.json).
func dataUsage(dir string) (int64, int) {
	var (
		size  int64
		plans int
	)
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		if name := d.Name(); strings.HasPrefix(name, "plan_") && strings.HasSuffix(name, ".json") {
			plans++
		}
		return nil
	})
	return size, plans
}
