package application

import (
	"expvar"
	"net/url"
	"strconv"
	"strings"
)

// EndCursor is the currEndId returned for an empty page.
const EndCursor = "END"

const (
	cacheNoCursor = "START"
	cacheNoFilter = "ALL"
)

var (
	cacheHits          = expvar.NewInt("task_cache_hits")
	cacheMisses        = expvar.NewInt("task_cache_misses")
	cacheInvalidations = expvar.NewInt("task_cache_invalidations")
)

// taskCachePattern matches every cached list page and single read of a user.
func taskCachePattern(userID string) string {
	return "tasks:" + userID + ":*"
}

func taskListKey(userID string, q ListTasksQuery) string {
	cursor := cacheNoCursor
	if q.PrevEndID != nil {
		cursor = strconv.FormatInt(*q.PrevEndID, 10)
	}
	// a real filter is prefixed and escaped so it can never equal the placeholder
	// or smuggle a ':' into the key
	content := cacheNoFilter
	if q.Content != nil && *q.Content != "" {
		content = "q=" + url.QueryEscape(*q.Content)
	}
	completed := cacheNoFilter
	if q.IsCompleted != nil {
		completed = strconv.FormatBool(*q.IsCompleted)
	}
	return strings.Join([]string{"tasks", userID, "findAll", cursor, strconv.Itoa(q.Take), content, completed}, ":")
}

func taskOneKey(userID string, id int64) string {
	return "tasks:" + userID + ":findOne:" + strconv.FormatInt(id, 10)
}
