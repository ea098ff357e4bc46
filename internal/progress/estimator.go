package progress

import (
	"math"
	"sync"
	"time"
)

type Stage string

const StageScan Stage = "scan"

type Snapshot struct {
	Stage     Stage         `json:"stage"`
	Total     int           `json:"total"`
	Done      int           `json:"done"`
	Remaining int           `json:"remaining"`
	Markers   int           `json:"markers"`
	RateEMA   float64       `json:"rate_per_sec"`
	ETA       time.Duration `json:"eta"`
	Warmup    bool          `json:"warmup"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

type Config struct {
	Alpha          float64
	WarmupSamples  int
	NotifyInterval time.Duration
}

// Estimator は処理済みファイル数から指数移動平均の速度と残り時間を見積もります。
type Estimator struct {
	mu         sync.Mutex
	cfg        Config
	start      time.Time
	lastUpdate time.Time
	lastNotify time.Time
	total      int
	done       int
	markers    int
	ema        float64
}

func DefaultConfig() Config {
	return Config{
		Alpha:          0.2,
		WarmupSamples:  8,
		NotifyInterval: 100 * time.Millisecond,
	}
}

func NewEstimator(total int, cfg Config) *Estimator {
	base := DefaultConfig()
	if cfg.Alpha > 0 {
		base.Alpha = cfg.Alpha
	}
	if cfg.WarmupSamples > 0 {
		base.WarmupSamples = cfg.WarmupSamples
	}
	if cfg.NotifyInterval > 0 {
		base.NotifyInterval = cfg.NotifyInterval
	}
	now := time.Now()
	return &Estimator{cfg: base, start: now, lastUpdate: now, total: total}
}

// Advance は delta 件のファイル完了と、そこで見つかった markers 件を記録し、
// 通知すべきスナップショットかどうかを返します。
func (e *Estimator) Advance(delta, markers int) (Snapshot, bool) {
	if delta <= 0 {
		return e.Snapshot(), false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.markers += max(0, markers)
	now := time.Now()
	if now.Before(e.lastUpdate) {
		now = e.lastUpdate
	}
	dt := now.Sub(e.lastUpdate).Seconds()
	if dt <= 0 {
		dt = 1e-6
	}
	e.done += delta
	instant := float64(delta) / dt
	if math.IsNaN(instant) || math.IsInf(instant, 0) || instant < 0 {
		instant = 0
	}
	if e.ema == 0 {
		e.ema = instant
	} else {
		e.ema = e.cfg.Alpha*instant + (1-e.cfg.Alpha)*e.ema
	}
	e.lastUpdate = now
	snap := e.snapshotLocked(now)
	notify := now.Sub(e.lastNotify) >= e.cfg.NotifyInterval || snap.Remaining == 0
	if notify {
		e.lastNotify = now
	}
	return snap, notify
}

func (e *Estimator) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(time.Now())
}

func (e *Estimator) snapshotLocked(now time.Time) Snapshot {
	remain := e.total - e.done
	if remain < 0 {
		remain = 0
	}
	warm := e.done < e.cfg.WarmupSamples
	var eta time.Duration
	if !warm && remain > 0 && e.ema > 0 {
		eta = time.Duration(float64(remain) / e.ema * float64(time.Second))
	}
	return Snapshot{
		Stage:     StageScan,
		Total:     e.total,
		Done:      e.done,
		Remaining: remain,
		Markers:   e.markers,
		RateEMA:   e.ema,
		ETA:       eta,
		Warmup:    warm,
		StartedAt: e.start,
		UpdatedAt: now,
		Elapsed:   now.Sub(e.start),
	}
}
