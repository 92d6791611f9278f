package service

import (
	"context"
	"testing"
	"time"

	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService(t *testing.T, store SessionStore) (*SessionService, *clock) {
	t.Helper()
	c := &clock{t: startTime}
	svc := NewSessionService(store, testLog)
	svc.now = c.now
	return svc, c
}

func seed(t *testing.T, store SessionStore, exam *model.Exam) {
	t.Helper()
	require.NoError(t, store.SaveExam(context.Background(), exam))
}

func TestRemainingMinutes(t *testing.T) {
	cases := []struct {
		name     string
		duration int
		elapsed  time.Duration
		want     int
	}{
		{"fresh", 60, 0, 60},
		{"partial minute floors", 60, 90 * time.Second, 59},
		{"half way", 60, 30 * time.Minute, 30},
		{"overdue clamps at zero", 60, 3 * time.Hour, 0},
		{"clock skew", 60, -5 * time.Minute, 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RemainingMinutes(tc.duration, startTime, startTime.Add(tc.elapsed)))
		})
	}
}

func TestLoad_StartsCreatedExam(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc, _ := newSessionService(t, store)
	seed(t, store, newExam(model.ExamStatusCreated))

	sess, err := svc.Load(ctx, "exam-1")
	require.NoError(t, err)

	assert.Equal(t, model.ExamStatusInProgress, sess.Exam.Status)
	require.NotNil(t, sess.Exam.StartedAt)
	assert.True(t, sess.Exam.StartedAt.Equal(startTime))
	assert.Equal(t, 60, sess.RemainingMinutes)
	assert.Equal(t, 0, sess.Answered)
	assert.Equal(t, 3, sess.Total)
	assert.NotNil(t, sess.Answers)

	stored, err := store.GetExam(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, model.ExamStatusInProgress, stored.Status)
}

func TestLoad_StartsScheduledExam(t *testing.T) {
	store := repository.NewMemoryStore()
	svc, _ := newSessionService(t, store)
	seed(t, store, newExam(model.ExamStatusScheduled))

	sess, err := svc.Load(context.Background(), "exam-1")
	require.NoError(t, err)
	assert.Equal(t, model.ExamStatusInProgress, sess.Exam.Status)
}

func TestLoad_ResumeKeepsStartTime(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc, c := newSessionService(t, store)
	seed(t, store, newExam(model.ExamStatusCreated))

	_, err := svc.Load(ctx, "exam-1")
	require.NoError(t, err)
	require.NoError(t, svc.RecordAnswer(ctx, "exam-1", "q1", "A"))

	c.advance(25*time.Minute + 40*time.Second)

	sess, err := svc.Load(ctx, "exam-1")
	require.NoError(t, err)
	assert.True(t, sess.Exam.StartedAt.Equal(startTime))
	assert.Equal(t, 35, sess.RemainingMinutes)
	assert.Equal(t, 1, sess.Answered)
	assert.Equal(t, "A", sess.Answers["q1"])
}

func TestLoad_RefusesClosedExam(t *testing.T) {
	for _, status := range []model.ExamStatus{model.ExamStatusCompleted, model.ExamStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			store := repository.NewMemoryStore()
			svc, _ := newSessionService(t, store)
			seed(t, store, newExam(status))

			_, err := svc.Load(context.Background(), "exam-1")
			require.ErrorIs(t, err, ErrExamClosed)

			var closed *ExamClosedError
			require.ErrorAs(t, err, &closed)
			assert.Equal(t, status, closed.Status)
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	svc, _ := newSessionService(t, repository.NewMemoryStore())

	_, err := svc.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestLoad_PersistenceFailure(t *testing.T) {
	store := &brokenStore{MemoryStore: repository.NewMemoryStore()}
	svc, _ := newSessionService(t, store)
	seed(t, store.MemoryStore, newExam(model.ExamStatusCreated))
	store.failSave = true

	_, err := svc.Load(context.Background(), "exam-1")
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errBroken)
}

func TestRecordAnswer_OverwritesPreviousChoice(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc, _ := newSessionService(t, store)
	seed(t, store, newExam(model.ExamStatusInProgress))

	require.NoError(t, svc.RecordAnswer(ctx, "exam-1", "q1", "B"))
	require.NoError(t, svc.RecordAnswer(ctx, "exam-1", "q1", "A"))
	require.NoError(t, svc.RecordAnswer(ctx, "exam-1", "q3", "D"))

	answers, err := store.GetAnswers(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, model.AnswerMap{"q1": "A", "q3": "D"}, answers)
}

func TestRecordAnswer_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		status   model.ExamStatus
		question string
		alt      string
		want     error
	}{
		{"unknown question", model.ExamStatusInProgress, "q9", "A", ErrUnknownQuestion},
		{"unknown alternative", model.ExamStatusInProgress, "q1", "Z", ErrUnknownAlternative},
		{"not started", model.ExamStatusCreated, "q1", "A", ErrSessionNotStarted},
		{"completed", model.ExamStatusCompleted, "q1", "A", ErrExamClosed},
		{"cancelled", model.ExamStatusCancelled, "q1", "A", ErrExamClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := repository.NewMemoryStore()
			svc, _ := newSessionService(t, store)
			seed(t, store, newExam(tc.status))

			err := svc.RecordAnswer(ctx, "exam-1", tc.question, tc.alt)
			assert.ErrorIs(t, err, tc.want)

			answers, err := store.GetAnswers(ctx, "exam-1")
			require.NoError(t, err)
			assert.Empty(t, answers)
		})
	}
}

func TestRecordAnswer_PersistenceFailure(t *testing.T) {
	store := &brokenStore{MemoryStore: repository.NewMemoryStore(), failPut: true}
	svc, _ := newSessionService(t, store)
	seed(t, store, newExam(model.ExamStatusInProgress))

	err := svc.RecordAnswer(context.Background(), "exam-1", "q1", "A")
	assert.ErrorIs(t, err, ErrPersistence)
}

func startedExam() *model.Exam {
	e := newExam(model.ExamStatusInProgress)
	started := startTime
	e.StartedAt = &started
	return e
}

func TestFinalize_ScoresAndCloses(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc, c := newSessionService(t, store)
	seed(t, store, startedExam())

	require.NoError(t, svc.RecordAnswer(ctx, "exam-1", "q1", "A"))
	require.NoError(t, svc.RecordAnswer(ctx, "exam-1", "q2", "C"))
	c.advance(12*time.Minute + 59*time.Second)

	summary, err := svc.Finalize(ctx, "exam-1", FinalizeOptions{Trigger: TriggerManual, Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Correct)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, []string{"q3"}, summary.UnansweredIDs)

	stored, err := store.GetExam(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, model.ExamStatusCompleted, stored.Status)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 1, *stored.Score)
	require.NotNil(t, stored.ElapsedMinutes)
	assert.Equal(t, 12, *stored.ElapsedMinutes)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(c.now()))
	require.NotNil(t, stored.Statistics)
	assert.Len(t, stored.Statistics.ByDiscipline, 2)
}

func TestFinalize_RequiresConfirmationWithUnanswered(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc, _ := newSessionService(t, store)
	seed(t, store, startedExam())
	require.NoError(t, svc.RecordAnswer(ctx, "exam-1", "q1", "A"))

	_, err := svc.Finalize(ctx, "exam-1", FinalizeOptions{Trigger: TriggerManual})
	require.ErrorIs(t, err, ErrConfirmRequired)

	var confirm *ConfirmationRequiredError
	require.ErrorAs(t, err, &confirm)
	assert.Equal(t, 1, confirm.Answered)
	assert.Equal(t, 3, confirm.Total)

	stored, err := store.GetExam(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, model.ExamStatusInProgress, stored.Status)
	assert.Nil(t, stored.Score)
}

func TestFinalize_AllAnsweredNeedsNoConfirmation(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc, _ := newSessionService(t, store)
	seed(t, store, startedExam())
	for q, a := range map[string]string{"q1": "A", "q2": "B", "q3": "D"} {
		require.NoError(t, svc.RecordAnswer(ctx, "exam-1", q, a))
	}

	summary, err := svc.Finalize(ctx, "exam-1", FinalizeOptions{Trigger: TriggerManual})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Correct)
	assert.InDelta(t, 100.0, summary.Percentage, 0.001)
}

func TestFinalize_TimeoutSkipsConfirmation(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc, c := newSessionService(t, store)
	seed(t, store, startedExam())
	c.advance(60 * time.Minute)

	summary, err := svc.Finalize(ctx, "exam-1", FinalizeOptions{Trigger: TriggerTimeout})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Correct)
	assert.Len(t, summary.UnansweredIDs, 3)

	stored, err := store.GetExam(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, 60, *stored.ElapsedMinutes)
}

func TestFinalize_SecondCallIsRejected(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc, _ := newSessionService(t, store)
	seed(t, store, startedExam())

	_, err := svc.Finalize(ctx, "exam-1", FinalizeOptions{Trigger: TriggerTimeout})
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, "exam-1", FinalizeOptions{Trigger: TriggerManual, Confirmed: true})
	assert.ErrorIs(t, err, ErrExamClosed)

	err = svc.RecordAnswer(ctx, "exam-1", "q1", "A")
	assert.ErrorIs(t, err, ErrExamClosed)
}

func TestFinalize_NotStarted(t *testing.T) {
	store := repository.NewMemoryStore()
	svc, _ := newSessionService(t, store)
	seed(t, store, newExam(model.ExamStatusCreated))

	_, err := svc.Finalize(context.Background(), "exam-1", FinalizeOptions{Trigger: TriggerTimeout})
	assert.ErrorIs(t, err, ErrSessionNotStarted)
}

func TestFinalize_PersistenceFailureLeavesExamOpen(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{MemoryStore: repository.NewMemoryStore()}
	svc, _ := newSessionService(t, store)
	seed(t, store, startedExam())
	store.failSave = true

	_, err := svc.Finalize(ctx, "exam-1", FinalizeOptions{Trigger: TriggerTimeout})
	require.ErrorIs(t, err, ErrPersistence)

	stored, err := store.GetExam(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, model.ExamStatusInProgress, stored.Status)

	store.failSave = false
	_, err = svc.Finalize(ctx, "exam-1", FinalizeOptions{Trigger: TriggerTimeout})
	assert.NoError(t, err)
}

func TestResult(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc, _ := newSessionService(t, store)
	seed(t, store, startedExam())
	require.NoError(t, svc.RecordAnswer(ctx, "exam-1", "q2", "B"))

	_, err := svc.Result(ctx, "exam-1")
	require.ErrorIs(t, err, ErrExamNotCompleted)

	_, err = svc.Finalize(ctx, "exam-1", FinalizeOptions{Trigger: TriggerTimeout})
	require.NoError(t, err)

	res, err := svc.Result(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, model.ExamStatusCompleted, res.Exam.Status)
	assert.Equal(t, "B", res.Answers["q2"])
	assert.Equal(t, 1, res.Summary.Correct)
	assert.Equal(t, []string{"q2"}, res.Summary.CorrectIDs)
}
