package repository

import (
	"strconv"
	"strings"
	"time"
)

func postgresPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func mysqlPlaceholder(int) string {
	return "?"
}

// timeRangeFilter builds an optional WHERE clause over created_at.
func timeRangeFilter(from, to *time.Time, placeholder func(int) string) (string, []any) {
	var conditions []string
	var args []any

	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, "created_at >= "+placeholder(len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, "created_at <= "+placeholder(len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
