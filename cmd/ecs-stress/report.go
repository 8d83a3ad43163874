package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/computecs/ecs"
)

type Report struct {
	Duration      time.Duration
	Device        string
	Entities      int
	Systems       int
	ReadbackEvery int

	TotalFrames int64
	TotalTime   time.Duration
	FrameTime   Stats
	Readback    Stats

	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats

	Registry  ecs.RegistryStats
	Scheduler *ecs.SchedulerStats
}

// Stats summarises a series of duration samples.
type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P50     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	sorted := slices.Clone(s.Samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, sample := range sorted {
		total += sample
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Avg = total / time.Duration(len(sorted))
	s.P50 = percentile(sorted, 50)
	s.P99 = percentile(sorted, 99)
}

// percentile uses the nearest-rank method on sorted samples.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// EntityUpdatesPerSecond is the number of entity-system work items the
// device completed per second of wall time.
func (r *Report) EntityUpdatesPerSecond() float64 {
	if r.TotalTime <= 0 {
		return 0
	}
	return float64(r.TotalFrames) * float64(r.Entities) * float64(r.Systems) / r.TotalTime.Seconds()
}

// DeviceBytes is the memory held by every component store.
func (r *Report) DeviceBytes() int {
	var total int
	for _, store := range r.Registry.StoreBreakdown {
		total += store.Bytes
	}
	return total
}

const reportTemplate = `
# Device ECS Stress Report

## Configuration
- **Device:** {{.Device}}
- **Run Duration:** {{.Duration}}
- **Entities:** {{.Entities}}
- **Systems per Frame:** {{.Systems}}
{{- if .ReadbackEvery}}
- **Readback Every:** {{.ReadbackEvery}} frames
{{- end}}

## Frames
- **Total Frames:** {{.TotalFrames}} in {{.TotalTime}}
- **Entity Updates/s:** {{printf "%.0f" .EntityUpdatesPerSecond}}
- **Frame Time:** avg {{.FrameTime.Avg}}, p50 {{.FrameTime.P50}}, p99 {{.FrameTime.P99}}, min {{.FrameTime.Min}}, max {{.FrameTime.Max}}
{{- with .Readback}}{{if .Samples}}
- **Readback:** {{len .Samples}} reads, avg {{.Avg}}, p99 {{.P99}}, max {{.Max}}
{{- end}}{{end}}

## Device Stores
{{range .Registry.StoreBreakdown}}- {{.Type}}: {{.Population}}/{{.Capacity}} slots, {{.Stride}} B stride, {{mb .Bytes}} MB
{{end}}- **Total Device Memory:** {{mb .DeviceBytes}} MB
- **Kernels Compiled:** {{.Registry.KernelCount}}
- **Dispatches:** {{.Registry.Dispatches}}
{{with .Scheduler}}
## Systems
{{range .Systems}}- {{.Name}}: {{.ExecutionCount}} runs, avg {{.AvgDuration}}, min {{.MinDuration}}, max {{.MaxDuration}}
{{end}}{{end}}
## Host Memory
- **Heap Alloc Delta:** {{delta .MemStatsStart.HeapAlloc .MemStatsEnd.HeapAlloc}} B
- **Total Alloc Delta:** {{delta .MemStatsStart.TotalAlloc .MemStatsEnd.TotalAlloc}} B
- **GC Cycles:** {{gcs .MemStatsStart.NumGC .MemStatsEnd.NumGC}}
{{- if .GCPauseMetrics}}
- **GC Pause Total:** {{pause .MemStatsStart.PauseTotalNs .MemStatsEnd.PauseTotalNs}}
{{- end}}
`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"mb": func(bytes int) string {
		return fmt.Sprintf("%.2f", float64(bytes)/1024/1024)
	},
	"delta": func(start, end uint64) int64 {
		return int64(end) - int64(start)
	},
	"gcs": func(start, end uint32) uint32 {
		return end - start
	},
	"pause": func(start, end uint64) time.Duration {
		return time.Duration(end - start)
	},
}).Parse(reportTemplate))

func (r *Report) Generate(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}
