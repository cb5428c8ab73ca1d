package service

import (
	"errors"

	"github.com/Ostapenko-Vasilii/TgBot-fork/internal/models"
)

// ErrSubmissionNotFound is returned when a reply is activated on a
// submission id that does not exist in the store.
var ErrSubmissionNotFound = errors.New("submission not found")

// Storage is the persistence surface the service needs. Implemented by
// repository.Repository.
type Storage interface {
	UpsertStart(userID int64) error
	RecordInteraction(userID int64) error
	InsertSubmission(userID int64, firstName, username string, c models.Content) (int64, error)
	ListSubmissions(onlyUnreplied bool) ([]models.Submission, error)
	MarkReplied(id int64) error
	SubmissionOwner(id int64) (int64, bool, error)
	UsageStats() (models.Stats, error)
}

// ReplyTarget binds an administrator's next message to the user and
// submission it answers.
type ReplyTarget struct {
	UserID       int64
	SubmissionID int64
}

// Service tracks the moderation state: which users are mid-submission,
// which submission each administrator is replying to, and how many
// submissions are still unread. All state here is touched only from the
// single update-processing goroutine, so no locking is needed. It is
// not persisted and resets on restart.
type Service struct {
	store   Storage
	admins  []int64
	pending map[int64]bool        // user id -> awaiting their next message as a submission
	replies map[int64]ReplyTarget // admin id -> at most one active correlation
	unread  int
}

func NewService(store Storage, admins []int64) *Service {
	return &Service{
		store:   store,
		admins:  admins,
		pending: make(map[int64]bool),
		replies: make(map[int64]ReplyTarget),
	}
}

func (s *Service) IsAdmin(id int64) bool {
	for _, adminID := range s.admins {
		if adminID == id {
			return true
		}
	}
	return false
}

func (s *Service) Admins() []int64 {
	return s.admins
}

// Activity tracking

func (s *Service) RecordStart(userID int64) error {
	return s.store.UpsertStart(userID)
}

func (s *Service) RecordInteraction(userID int64) error {
	return s.store.RecordInteraction(userID)
}

func (s *Service) UsageStats() (models.Stats, error) {
	return s.store.UsageStats()
}

// Submission flow

// BeginSubmission marks the user's next message as a submission.
func (s *Service) BeginSubmission(userID int64) {
	s.pending[userID] = true
}

func (s *Service) AwaitingSubmission(userID int64) bool {
	return s.pending[userID]
}

// CaptureSubmission persists the content as a new submission, clears
// the pending flag and returns the new unread count.
func (s *Service) CaptureSubmission(userID int64, firstName, username string, c models.Content) (int, error) {
	if _, err := s.store.InsertSubmission(userID, firstName, username, c); err != nil {
		return s.unread, err
	}
	delete(s.pending, userID)
	s.unread++
	return s.unread, nil
}

// NoteAdminActivity bumps the unread counter for an administrator
// message that is neither a reply nor a submission. Nothing is stored;
// this mirrors how admin-originated notes have always been announced.
func (s *Service) NoteAdminActivity() int {
	s.unread++
	return s.unread
}

func (s *Service) Unread() int {
	return s.unread
}

func (s *Service) ListSubmissions(onlyUnreplied bool) ([]models.Submission, error) {
	return s.store.ListSubmissions(onlyUnreplied)
}

// Reply correlation

// ActivateReply binds the admin's next message to the given submission.
// A second activation before the first resolves overwrites it. On an
// unknown submission id nothing changes and ErrSubmissionNotFound is
// returned.
func (s *Service) ActivateReply(adminID, submissionID int64) error {
	ownerID, found, err := s.store.SubmissionOwner(submissionID)
	if err != nil {
		return err
	}
	if !found {
		return ErrSubmissionNotFound
	}
	s.replies[adminID] = ReplyTarget{UserID: ownerID, SubmissionID: submissionID}
	return nil
}

// PendingReply reports the admin's active correlation, if any.
func (s *Service) PendingReply(adminID int64) (ReplyTarget, bool) {
	target, ok := s.replies[adminID]
	return target, ok
}

// ResolveReply marks the correlated submission as replied, clears the
// admin's correlation and decrements the unread counter (floored at
// zero). The returned target tells the caller where to relay.
func (s *Service) ResolveReply(adminID int64) (ReplyTarget, error) {
	target, ok := s.replies[adminID]
	if !ok {
		return ReplyTarget{}, ErrSubmissionNotFound
	}
	if err := s.store.MarkReplied(target.SubmissionID); err != nil {
		return ReplyTarget{}, err
	}
	delete(s.replies, adminID)
	if s.unread > 0 {
		s.unread--
	}
	return target, nil
}
