package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/snowfall/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkImpact     BookmarkType = "impact"      // material first reaches the floor band
	BookmarkSettled    BookmarkType = "settled"     // the pile has come to rest
	BookmarkSpeedSpike BookmarkType = "speed_spike" // max speed jumps above its rolling average
	BookmarkCompaction BookmarkType = "compaction"  // many particles newly pinned at the Jp floor
	BookmarkUnstable   BookmarkType = "unstable"    // the simulation stopped on non-finite state
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int32        `csv:"frame"`
	SimTimeSec  float64      `csv:"sim_time"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"sim_time", b.SimTimeSec,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg   config.BookmarksConfig
	floor float64 // height at or below which a particle is on the floor

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	impacted       bool
	settled        bool
	restingWindows int
}

// NewBookmarkDetector creates a detector. floor is the normalized height
// of the floor band's top edge.
func NewBookmarkDetector(cfg config.BookmarksConfig, floor float64) *BookmarkDetector {
	size := cfg.HistorySize
	if size < 3 {
		size = 3
	}
	return &BookmarkDetector{
		cfg:         cfg,
		floor:       floor,
		history:     make([]WindowStats, size),
		historySize: size,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkImpact(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkSpeedSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkCompaction(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) newBookmark(t BookmarkType, stats WindowStats, format string, args ...any) *Bookmark {
	return &Bookmark{
		Type:        t,
		Frame:       stats.WindowEndFrame,
		SimTimeSec:  stats.SimTimeSec,
		Description: fmt.Sprintf(format, args...),
	}
}

func (bd *BookmarkDetector) checkImpact(stats WindowStats) *Bookmark {
	if bd.impacted || stats.Particles == 0 || stats.HeightMin > bd.floor {
		return nil
	}
	bd.impacted = true
	return bd.newBookmark(BookmarkImpact, stats,
		"Lowest particle at %.3f reached the floor band (%.3f)", stats.HeightMin, bd.floor)
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if !bd.impacted {
		return nil
	}

	switch {
	case stats.SpeedMean < bd.cfg.SettleSpeed:
		bd.restingWindows++
	case stats.SpeedMean > 2*bd.cfg.SettleSpeed:
		// Re-arm once the pile is clearly moving again
		bd.restingWindows = 0
		bd.settled = false
	default:
		bd.restingWindows = 0
	}

	if bd.settled || bd.restingWindows < max(bd.cfg.SettleWindows, 1) {
		return nil
	}
	bd.settled = true
	return bd.newBookmark(BookmarkSettled, stats,
		"Mean speed %.4f below %.4f for %d windows", stats.SpeedMean, bd.cfg.SettleSpeed, bd.restingWindows)
}

func (bd *BookmarkDetector) checkSpeedSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.SpeedMax
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.SpeedMax > avg*bd.cfg.SpikeMultiplier && stats.SpeedMax > bd.cfg.MinSpikeSpeed {
		return bd.newBookmark(BookmarkSpeedSpike, stats,
			"Max speed %.2f is %.1fx average (%.2f)", stats.SpeedMax, stats.SpeedMax/avg, avg)
	}
	return nil
}

func (bd *BookmarkDetector) checkCompaction(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.JpAtMin
	}
	avg := float64(total) / float64(len(history))

	if stats.JpAtMin < bd.cfg.MinCompacted {
		return nil
	}
	if avg == 0 || float64(stats.JpAtMin) > avg*bd.cfg.CompactionMultiplier {
		return bd.newBookmark(BookmarkCompaction, stats,
			"%d particles at the Jp floor, rolling average %.1f", stats.JpAtMin, avg)
	}
	return nil
}
