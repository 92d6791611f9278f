package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamKey returns the key holding the whole exam record.
func (r *CacheKeyStruct) ExamKey(examID string) string {
	return fmt.Sprintf("exam:%s", examID)
}

// ExamAnswersKey returns the key holding the answer map of an exam.
func (r *CacheKeyStruct) ExamAnswersKey(examID string) string {
	return fmt.Sprintf("exam-answers:%s", examID)
}

// ExamNoAnswersKey marks an exam whose durable answer map is known to be
// empty.
func (r *CacheKeyStruct) ExamNoAnswersKey(examID string) string {
	return fmt.Sprintf("exam-answers-empty:%s", examID)
}

// UserExamsKey returns the key of the set of exam ids owned by a user.
func (r *CacheKeyStruct) UserExamsKey(userID string) string {
	return fmt.Sprintf("user:%s:exams", userID)
}

// RateLimitKey returns the counter key of one rate-limit window.
func (r *CacheKeyStruct) RateLimitKey(window string) string {
	return fmt.Sprintf("ratelimit:%s", window)
}

var CacheKey = NewCacheKeyStruct()
