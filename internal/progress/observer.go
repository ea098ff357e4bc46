package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Observer は走査の進捗を受け取ります。Publish は複数の goroutine から呼ばれます。
type Observer interface {
	Publish(Snapshot)
	Done(Snapshot)
}

type NoopObserver struct{}

func (NoopObserver) Publish(Snapshot) {}
func (NoopObserver) Done(Snapshot)    {}

// ObserverFunc は途中経過だけを受け取る Observer です。
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Publish(s Snapshot) { f(s) }
func (ObserverFunc) Done(Snapshot)        {}

// ShouldShowProgress は w に進捗を出すかを返します。既定では w が端末のときだけ出します。
func ShouldShowProgress(w io.Writer, force, no bool) bool {
	switch {
	case no:
		return false
	case force:
		return true
	}
	return isTerminal(w)
}

// Reporter は進捗を 1 行の要約として書き出します。
// 端末では同じ行を書き換え、それ以外では通知ごとに 1 行追記して最後に合計を書きます。
type Reporter struct {
	mu   sync.Mutex
	w    io.Writer
	live bool
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w, live: isTerminal(w)}
}

func (r *Reporter) Publish(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live {
		_, _ = fmt.Fprintf(r.w, "\r\033[K%s", Summary(s))
		return
	}
	_, _ = fmt.Fprintln(r.w, Summary(s))
}

func (r *Reporter) Done(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live {
		_, _ = fmt.Fprint(r.w, "\r\033[K")
		return
	}
	_, _ = fmt.Fprintf(r.w, "scanned %d files, %s in %s\n", s.Done, plural(s.Markers, "marker"), s.Elapsed.Round(time.Millisecond))
}

// Summary は "scan 5/10 files, 3 markers, 12.5 files/s, eta 4s" の形の要約です。
// ウォームアップ中は速度と残り時間を省きます。
func Summary(s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d/%d files, %s", s.Stage, s.Done, s.Total, plural(s.Markers, "marker"))
	if s.Warmup || s.RateEMA <= 0 {
		return b.String()
	}
	fmt.Fprintf(&b, ", %.1f files/s", s.RateEMA)
	if s.ETA > 0 {
		fmt.Fprintf(&b, ", eta %s", s.ETA.Round(time.Second))
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f != nil && term.IsTerminal(int(f.Fd()))
}
