package cache

import "strings"

const (
	GlobalKeyPrefix = "notewise"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// SessionKey is where a study session is stored.
func SessionKey(sessionID string) string {
	return GenerateCacheKey("session", "study", sessionID)
}

// FlowResultKey addresses the cached output of a deterministic flow.
func FlowResultKey(flow, inputHash string) string {
	return GenerateCacheKey("flow", flow, inputHash)
}

// EmbeddingKey addresses a cached embedding vector.
func EmbeddingKey(source, textHash string) string {
	return GenerateCacheKey("embedding", source, textHash)
}
