package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// openDelay gives the listener time to bind before the browser asks for the page.
const openDelay = time.Second

func pageURL(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d/index.html", port)
}

func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "windows":
		return exec.Command("cmd", "/c", "start", url)
	case "darwin":
		return exec.Command("open", url)
	default:
		return exec.Command("xdg-open", url)
	}
}

// openInBrowser launches the system browser on the answer page after
// openDelay. The returned timer can be stopped if the server goes down first.
func openInBrowser(log *zap.Logger, port int) *time.Timer {
	url := pageURL(port)
	return time.AfterFunc(openDelay, func() {
		if err := browserCommand(runtime.GOOS, url).Start(); err != nil {
			log.Warn("Failed to open browser", zap.String("url", url), zap.Error(err))
			return
		}
		log.Info("Opened answer page in browser", zap.String("url", url))
	})
}
