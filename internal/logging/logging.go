package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath names the session log file after the app and the session
// start time, so repeated runs never clobber each other's logs.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	name := fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405"))
	return filepath.Join(logsDir, name)
}
