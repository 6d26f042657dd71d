package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

var levelRank = map[string]int{
	"info":     0,
	"warning":  1,
	"critical": 2,
}

// AtLeast reports whether alert level meets min. Unknown levels rank as info.
func AtLeast(level, min string) bool {
	return levelRank[level] >= levelRank[min]
}

// Notify sends a desktop notification for the given alert. On macOS it uses
// osascript, on Linux it tries notify-send. If neither is available, it falls
// back to printing to stderr.
func Notify(alert Alert) error {
	switch runtime.GOOS {
	case "darwin":
		return notifyMacOS(alert)
	case "linux":
		return notifyLinux(alert)
	default:
		return notifyFallback(os.Stderr, alert)
	}
}

func notifyMacOS(alert Alert) error {
	script := fmt.Sprintf(
		`display notification %q with title "interlog" subtitle %q`,
		alert.Message, alert.Title,
	)
	if alert.Level == "critical" {
		script += ` sound name "Basso"`
	}
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return notifyFallback(os.Stderr, alert)
	}
	return nil
}

func notifyLinux(alert Alert) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return notifyFallback(os.Stderr, alert)
	}

	urgency := "normal"
	switch alert.Level {
	case "critical":
		urgency = "critical"
	case "info":
		urgency = "low"
	}
	title := fmt.Sprintf("interlog: %s", alert.Title)
	if err := exec.Command("notify-send", "-u", urgency, title, alert.Message).Run(); err != nil {
		return notifyFallback(os.Stderr, alert)
	}
	return nil
}

// notifyFallback writes the alert to w when no desktop notification system
// is available.
func notifyFallback(w io.Writer, alert Alert) error {
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}
