package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedTokenKey returns the cache key marking a token ID as logged out.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// QuestionHintKey returns the cache key for a question's generated hint.
func (r *CacheKeyStruct) QuestionHintKey(questionID int) string {
	return fmt.Sprintf("question:%d:hint", questionID)
}

var CacheKey = NewCacheKeyStruct()
