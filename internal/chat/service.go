package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wayfarer/internal/itinerary"
	"wayfarer/internal/logging"
)

// Answerer produces the assistant reply for one question.
type Answerer interface {
	FollowUp(ctx context.Context, initialContext string, history []itinerary.Turn, question string) (string, error)
}

// Service runs chat rounds. Each round is answered from the initial context plus
// at most historyWindow earlier answered pairs (zero sends none).
type Service struct {
	store         Store
	answerer      Answerer
	historyWindow int
	roundTimeout  time.Duration
	now           func() time.Time
}

func NewService(store Store, answerer Answerer, historyWindow int) *Service {
	return &Service{
		store:         store,
		answerer:      answerer,
		historyWindow: historyWindow,
		roundTimeout:  roundTimeout,
		now:           time.Now,
	}
}

// Start opens a session seeded with the itinerary text.
func (s *Service) Start(ctx context.Context, initialContext string) (*Session, error) {
	sess := NewSession(uuid.NewString(), initialContext, s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// Ask runs one round. While another round is in flight it returns ErrAwaiting
// and changes nothing. On answer failure the session keeps the user turn and
// the answerer's error is returned alongside the updated session.
func (s *Service) Ask(ctx context.Context, id, question string) (*Session, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	token, ok, err := s.store.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAwaiting
	}
	defer func() {
		_ = s.store.Release(context.WithoutCancel(ctx), id, token)
	}()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).WithFields(logrus.Fields{"session_id": id})

	if sess.State == StateAwaiting {
		// Left over from a round that never finished; the lock says none is running now.
		sess.Fail()
	}
	history := sess.AnsweredPairs(s.historyWindow)
	if err := sess.Submit(question, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	roundCtx, cancel := context.WithTimeout(ctx, s.roundTimeout)
	answer, askErr := s.answerer.FollowUp(roundCtx, sess.InitialContext, history, question)
	cancel()
	if askErr != nil {
		sess.Fail()
		logger.WithError(askErr).Warn("chat round failed")
		if err := s.store.Save(context.WithoutCancel(ctx), sess); err != nil {
			logger.WithError(err).Error("save session after failed round")
		}
		return sess, askErr
	}

	sess.Resolve(answer, s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	logger.WithField("turns", len(sess.Turns)).Info("chat round answered")
	return sess, nil
}
