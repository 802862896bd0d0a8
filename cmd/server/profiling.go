package main

import (
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
)

// ProfilingConfig holds configuration for profiling
type ProfilingConfig struct {
	Enabled bool
	Port    string
}

// ProfilingFromEnv reads ENABLE_PROFILING and PPROF_PORT.
func ProfilingFromEnv() ProfilingConfig {
	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = "42069"
	}
	return ProfilingConfig{
		Enabled: os.Getenv("ENABLE_PROFILING") == "true",
		Port:    port,
	}
}

// StartProfiling serves pprof on its own port when enabled.
func StartProfiling(cfg ProfilingConfig, logger *slog.Logger) {
	if !cfg.Enabled {
		return
	}
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)

	go func() {
		logger.Info("pprof listening", "addr", ":"+cfg.Port,
			"cpu", "http://localhost:"+cfg.Port+"/debug/pprof/profile?seconds=30",
			"heap", "http://localhost:"+cfg.Port+"/debug/pprof/heap",
		)
		if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
			logger.Warn("pprof server failed", "error", err)
		}
	}()
}
