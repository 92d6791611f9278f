package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/medjourney/simulados-backend/internal/model"
)

// MemoryStore keeps exams, answers and question banks in process memory.
// It backs STORE_DRIVER=memory and the service tests. Records are copied
// through JSON so callers never share memory with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	exams   map[string][]byte
	answers map[string]model.AnswerMap
	banks   map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		exams:   make(map[string][]byte),
		answers: make(map[string]model.AnswerMap),
		banks:   make(map[string][]byte),
	}
}

// GetExam returns a copy of the stored exam.
func (s *MemoryStore) GetExam(ctx context.Context, id string) (*model.Exam, error) {
	s.mu.RLock()
	raw, ok := s.exams[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	e := &model.Exam{}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, err
	}
	return e, nil
}

// SaveExam overwrites the whole exam record.
func (s *MemoryStore) SaveExam(ctx context.Context, e *model.Exam) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.exams[e.ID] = raw
	s.mu.Unlock()
	return nil
}

// DeleteExam removes an exam and its answers.
func (s *MemoryStore) DeleteExam(ctx context.Context, e *model.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exams[e.ID]; !ok {
		return ErrNotFound
	}
	delete(s.exams, e.ID)
	delete(s.answers, e.ID)
	return nil
}

// ListExams returns the exams of a user, newest first.
func (s *MemoryStore) ListExams(ctx context.Context, ownerID string) ([]model.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exams := make([]model.Exam, 0)
	for _, raw := range s.exams {
		var e model.Exam
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		if e.OwnerID == ownerID {
			exams = append(exams, e)
		}
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].CreatedAt.After(exams[j].CreatedAt) })
	return exams, nil
}

// GetAnswers returns a copy of the answer map of an exam.
func (s *MemoryStore) GetAnswers(ctx context.Context, examID string) (model.AnswerMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answers[examID].Clone(), nil
}

// PutAnswer upserts one answer.
func (s *MemoryStore) PutAnswer(ctx context.Context, examID, questionID, alternativeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.answers[examID]
	if !ok {
		m = make(model.AnswerMap)
		s.answers[examID] = m
	}
	m[questionID] = alternativeID
	return nil
}

// GetBank returns a copy of a question bank.
func (s *MemoryStore) GetBank(ctx context.Context, id string) (*model.QuestionBank, error) {
	s.mu.RLock()
	raw, ok := s.banks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	b := &model.QuestionBank{}
	if err := json.Unmarshal(raw, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBanks returns the banks of a user, oldest first.
func (s *MemoryStore) ListBanks(ctx context.Context, ownerID string) ([]model.QuestionBank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	banks := make([]model.QuestionBank, 0)
	for _, raw := range s.banks {
		var b model.QuestionBank
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		if b.OwnerID == ownerID {
			banks = append(banks, b)
		}
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].CreatedAt.Before(banks[j].CreatedAt) })
	return banks, nil
}

// SaveBank inserts or replaces a whole bank.
func (s *MemoryStore) SaveBank(ctx context.Context, b *model.QuestionBank) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.banks[b.ID] = raw
	s.mu.Unlock()
	return nil
}

// DeleteBank removes a bank.
func (s *MemoryStore) DeleteBank(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[id]; !ok {
		return ErrNotFound
	}
	delete(s.banks, id)
	return nil
}
