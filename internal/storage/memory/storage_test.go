package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/duelcast/duelcast/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) newSession(id, code string) *model.Session {
	return &model.Session{
		ID:        model.SessionID(id),
		Name:      "Trivia Night",
		Code:      model.JoinCode(code),
		CreatedAt: time.Now(),
	}
}

func (s *StorageSuite) TestSaveAndGetSession() {
	session := s.newSession("sess-1", "ABCD")
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	got, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(session.Name, got.Name)
	s.Equal(session.Code, got.Code)
}

func (s *StorageSuite) TestGetMissingSession() {
	_, err := s.storage.GetSession(s.ctx, "nope")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestCodeIndexFollowsSession() {
	session := s.newSession("sess-1", "ABCD")
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	id, err := s.storage.GetSessionIDByCode(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(model.SessionID("sess-1"), id)

	exists, err := s.storage.CodeExists(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestDeleteSessionRemovesCodeMapping() {
	session := s.newSession("sess-1", "ABCD")
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "sess-1"))

	_, err := s.storage.GetSession(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrSessionNotFound)

	_, err = s.storage.GetSessionIDByCode(s.ctx, "ABCD")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteMissingSessionFails() {
	s.ErrorIs(s.storage.DeleteSession(s.ctx, "nope"), model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSessionIsNotIdempotent() {
	session := s.newSession("sess-1", "ABCD")
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "sess-1"))

	s.ErrorIs(s.storage.DeleteSession(s.ctx, "sess-1"), model.ErrSessionNotFound)
}
