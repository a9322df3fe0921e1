package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedTokenKey marks a JWT ID as logged out until the token expires
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// QuizPayloadKey returns the cache key for a quiz's metadata and questions
func (r *CacheKeyStruct) QuizPayloadKey(quizID int) string {
	return fmt.Sprintf("quiz:%d:payload", quizID)
}

// ExportJobKey returns the hash holding an export job's state
func (r *CacheKeyStruct) ExportJobKey(jobID string) string {
	return fmt.Sprintf("export:%s", jobID)
}

// ExportFileKey returns the key holding a finished export's CSV body
func (r *CacheKeyStruct) ExportFileKey(jobID string) string {
	return fmt.Sprintf("export:%s:file", jobID)
}

// MonthlyReportKey marks a month's report notifications as already sent
func (r *CacheKeyStruct) MonthlyReportKey(month string) string {
	return fmt.Sprintf("report:monthly:%s:sent", month)
}

var CacheKey = NewCacheKeyStruct()
