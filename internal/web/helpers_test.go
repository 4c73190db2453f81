package web

import (
	"strconv"

	"github.com/saltyorg/contactbook/internal/web/handlers"
)

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func handlersVersion(version, commit, date string) handlers.VersionInfo {
	return handlers.VersionInfo{Version: version, Commit: commit, Date: date}
}
