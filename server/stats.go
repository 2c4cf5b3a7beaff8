// server/stats.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

type serverStats struct {
	Uptime           time.Duration
	Requests         int64
	CacheHits        int64
	AllocMemory      uint64
	TotalAllocMemory uint64
	SysMemory        uint64
	NumGC            uint32
	CPUUsage         float64
	SystemMemoryUsed float64
}

func (s *Server) stats() serverStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	st := serverStats{
		Uptime:           time.Since(s.startTime).Round(time.Second),
		Requests:         s.requests.Load(),
		CacheHits:        s.cacheHits.Load(),
		AllocMemory:      m.Alloc / (1024 * 1024),
		TotalAllocMemory: m.TotalAlloc / (1024 * 1024),
		SysMemory:        m.Sys / (1024 * 1024),
		NumGC:            m.NumGC,
	}
	// An interval of 0 reports usage since the previous call.
	if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
		st.CPUUsage = usage[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.SystemMemoryUsed = vm.UsedPercent
	}
	return st
}

func (s *Server) reportStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := s.stats()
			s.lg.Info("stats", slog.Duration("uptime", st.Uptime), slog.Int64("requests", st.Requests),
				slog.Int64("cache_hits", st.CacheHits), slog.Uint64("alloc_mb", st.AllocMemory),
				slog.Uint64("total_alloc_mb", st.TotalAllocMemory), slog.Uint64("sys_mb", st.SysMemory),
				slog.Any("num_gc", st.NumGC), slog.Float64("cpu", st.CPUUsage),
				slog.Float64("system_mem_used", st.SystemMemoryUsed))
		}
	}
}
