package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"notewise/internal/domain"
	"notewise/internal/logger"

	"go.uber.org/zap"
)

var errNoJSONObject = errors.New("no JSON object found in LLM response")

// extractJSONObject strips reasoning blocks and markdown fences and returns
// the outermost {...} of an LLM reply.
func extractJSONObject(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)

	for {
		start := strings.Index(cleaned, "<think>")
		if start == -1 {
			break
		}
		end := strings.Index(cleaned[start:], "</think>")
		if end == -1 {
			// unterminated reasoning, keep what follows the tag
			cleaned = cleaned[:start] + cleaned[start+len("<think>"):]
			break
		}
		cleaned = cleaned[:start] + cleaned[start+end+len("</think>"):]
	}
	cleaned = stripCodeFences(cleaned)

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return "", errNoJSONObject
	}
	return cleaned[jsonStart : jsonEnd+1], nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// decodeLLMJSON parses the JSON object in raw into out. Failures are
// reported as LLM_SERVICE_ERROR.
func decodeLLMJSON(flow, raw string, out interface{}) error {
	l := logger.Get()

	extracted, err := extractJSONObject(raw)
	if err != nil {
		l.Error("LLM response has no JSON object",
			zap.String("flow", flow),
			zap.String("raw_response", truncateForLog(raw)))
		return domain.NewLLMServiceError(fmt.Errorf("%s: %w", flow, err))
	}

	if err := json.Unmarshal([]byte(extracted), out); err != nil {
		l.Error("Failed to unmarshal LLM JSON",
			zap.String("flow", flow),
			zap.Error(err),
			zap.String("extracted_json", truncateForLog(extracted)))
		return domain.NewLLMServiceError(fmt.Errorf("%s: failed to unmarshal LLM response: %w", flow, err))
	}
	return nil
}

func truncateForLog(s string) string {
	const max = 500
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
