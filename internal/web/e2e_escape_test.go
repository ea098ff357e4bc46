//go:build e2e

package web

import (
	"context"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

func TestUIはスキャン結果をエスケープして表示する(t *testing.T) {
	if !hasBrowser() {
		t.Skip("Chrome/Chromiumが見つからないためスキップします")
	}
	app, _ := newTestApp(t)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	var status, text, href string
	var nodeCount int
	err := chromedp.Run(ctx,
		chromedp.Navigate(srv.URL),
		chromedp.WaitVisible(`#scan-form`, chromedp.ByID),
		chromedp.Click(`#scan-form button`, chromedp.ByQuery),
		chromedp.WaitVisible(`#out table`, chromedp.ByQuery),
		chromedp.Text(`#status`, &status, chromedp.ByID),
		chromedp.Text(`#out tbody tr:first-child td:nth-child(4)`, &text, chromedp.ByQuery),
		chromedp.AttributeValue(`#out tbody tr:first-child a`, "href", &href, nil, chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelectorAll('#out script, #out img').length`, &nodeCount),
	)
	if err != nil {
		t.Fatalf("chromedpの操作に失敗しました: %v", err)
	}
	if !strings.HasPrefix(status, "3 markers in 2 files") {
		t.Fatalf("ステータスが期待値と異なります: %q", status)
	}
	if text != "<script>alert('xss')</script> & <>" {
		t.Fatalf("テキストがそのまま表示されていません: %q", text)
	}
	if !strings.HasSuffix(href, "/preview?file=main.go#L3") {
		t.Fatalf("プレビューへのリンクが期待値と異なります: %q", href)
	}
	if nodeCount != 0 {
		t.Fatalf("危険なノードが挿入されています: %d", nodeCount)
	}
}

func hasBrowser() bool {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
