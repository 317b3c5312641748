package common

import "strings"

const lastSeenPrefix = "intranet:last_seen:"

func RedisKeyLastSeen(userID string) string {
	return lastSeenPrefix + userID
}

func FromRedisKeyLastSeen(key string) string {
	return strings.TrimPrefix(key, lastSeenPrefix)
}

func RedisKeyOnlineUsers() string {
	return "intranet:online_users"
}
