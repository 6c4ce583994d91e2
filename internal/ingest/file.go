package ingest

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"riskwatch/internal/config"
	"riskwatch/internal/model"
)

// StartFileTail follows JSONL evidence dumps, one envelope per line. Batch
// exporters append to these files; rotation is handled by reopening on
// shrink.
func StartFileTail(ctx context.Context, cfg *config.Manager, out chan<- model.EvidenceSet, logger *slog.Logger) {
	current := cfg.Get().Ingest.File
	if !current.Enabled {
		if logger != nil {
			logger.Info("file ingest disabled")
		}
		return
	}
	for _, path := range current.Files {
		path := path
		if logger != nil {
			logger.Info("file ingest enabled", "path", path, "start_at_end", current.StartAtEnd)
		}
		go tailFile(ctx, path, current.StartAtEnd, cfg, out, logger)
	}
}

func tailFile(ctx context.Context, path string, startAtEnd bool, cfg *config.Manager, out chan<- model.EvidenceSet, logger *slog.Logger) {
	var file *os.File
	var offset int64
	for {
		select {
		case <-ctx.Done():
			if file != nil {
				_ = file.Close()
			}
			return
		default:
		}
		if file == nil {
			f, err := os.Open(path)
			if err != nil {
				if logger != nil {
					logger.Warn("tail open failed", "path", path, "err", err)
				}
				if !BackoffSleep(ctx, 500*time.Millisecond) {
					return
				}
				continue
			}
			file = f
			offset = 0
			if startAtEnd {
				if pos, err := file.Seek(0, io.SeekEnd); err == nil {
					offset = pos
				}
				startAtEnd = false
			}
		}

		info, err := file.Stat()
		if err == nil && info.Size() < offset {
			// truncated or rotated, start over
			_ = file.Close()
			file = nil
			continue
		}

		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			_ = file.Close()
			file = nil
			continue
		}
		reader := bufio.NewReader(file)
		progressed := false
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			offset += int64(len(line))
			progressed = true
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			ev, perr := ParseEnvelope([]byte(trimmed), cfg.Get())
			if perr != nil {
				if logger != nil {
					logger.Warn("file envelope rejected", "path", path, "err", perr)
				}
				continue
			}
			SendNonBlocking(ctx, out, ev, logger)
		}
		if !progressed {
			if !BackoffSleep(ctx, 500*time.Millisecond) {
				if file != nil {
					_ = file.Close()
				}
				return
			}
		}
	}
}
