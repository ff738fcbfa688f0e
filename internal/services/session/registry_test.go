package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/duelcast/duelcast/internal/dependencies/mocks"
	"github.com/duelcast/duelcast/internal/dependencies/random"
	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/storage/memory"
	"github.com/duelcast/duelcast/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = NewRegistry(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RegistrySuite) createSession(code string) *model.Session {
	s.random.QueueCode(code)
	session, err := s.registry.CreateSession(s.ctx, "Trivia Night", "pw1")
	s.Require().NoError(err)
	return session
}

// CreateSession tests

func (s *RegistrySuite) TestCreateSessionSucceeds() {
	session := s.createSession("ABCD")

	s.NotEmpty(session.ID)
	s.Equal(model.JoinCode("ABCD"), session.Code)
	s.Equal("Trivia Night", session.Name)
	s.Empty(session.Players)
	s.Empty(session.Audience)
	s.Nil(session.CurrentDuel)
}

func (s *RegistrySuite) TestCreateSessionHashesPassword() {
	session := s.createSession("ABCD")

	s.NotEqual("pw1", session.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(session.PasswordHash), []byte("pw1")))
}

func (s *RegistrySuite) TestCreateSessionRetriesOnCodeCollision() {
	s.createSession("ABCD")

	s.random.QueueCode("ABCD", "EFGH")
	second, err := s.registry.CreateSession(s.ctx, "Other", "pw2")
	s.Require().NoError(err)
	s.Equal(model.JoinCode("EFGH"), second.Code)
}

func (s *RegistrySuite) TestGeneratedCodesUseUnambiguousAlphabet() {
	rnd := random.New()
	for i := 0; i < 100; i++ {
		code := rnd.Code(JoinCodeLength, JoinCodeAlphabet)
		s.Len(code, 4)
		for _, c := range code {
			s.True(strings.ContainsRune(JoinCodeAlphabet, c), "unexpected symbol %q", c)
		}
		s.NotContainsf(code, "I", "ambiguous symbol in %s", code)
		s.NotContains(code, "L")
		s.NotContains(code, "O")
		s.NotContains(code, "0")
	}
	s.Len(JoinCodeAlphabet, 32)
	s.Equal(strings.ToUpper(JoinCodeAlphabet), JoinCodeAlphabet)
}

// ResolveCode / Authenticate tests

func (s *RegistrySuite) TestResolveCodeFromCreationUntilDeletion() {
	session := s.createSession("ABCD")

	id, err := s.registry.ResolveCode(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(session.ID, id)

	s.Require().NoError(s.registry.DeleteSession(s.ctx, session.ID))

	_, err = s.registry.ResolveCode(s.ctx, "ABCD")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *RegistrySuite) TestAuthenticateSucceeds() {
	session := s.createSession("ABCD")

	got, err := s.registry.Authenticate(s.ctx, "ABCD", "pw1")
	s.Require().NoError(err)
	s.Equal(session.ID, got.ID)
}

func (s *RegistrySuite) TestAuthenticateRejectsUnknownCode() {
	_, err := s.registry.Authenticate(s.ctx, "ZZZZ", "pw1")
	s.ErrorIs(err, model.ErrInvalidCode)
}

func (s *RegistrySuite) TestAuthenticateRejectsWrongPassword() {
	s.createSession("ABCD")

	_, err := s.registry.Authenticate(s.ctx, "ABCD", "wrong")
	s.ErrorIs(err, model.ErrInvalidPassword)
}

// Roster tests

func (s *RegistrySuite) TestAddPlayerAppendsInOrder() {
	session := s.createSession("ABCD")

	first, err := s.registry.AddPlayer(s.ctx, session.ID, "Alice")
	s.Require().NoError(err)
	second, err := s.registry.AddPlayer(s.ctx, session.ID, "Bob")
	s.Require().NoError(err)
	s.NotEqual(first, second)

	players, err := s.registry.Players(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal("Alice", players[0].Name)
	s.Equal("Bob", players[1].Name)
	s.Zero(players[0].Score)
}

func (s *RegistrySuite) TestAddPlayerFailsWhenSessionGone() {
	_, err := s.registry.AddPlayer(s.ctx, "missing", "Alice")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *RegistrySuite) TestAddAudienceAppends() {
	session := s.createSession("ABCD")

	id, err := s.registry.AddAudience(s.ctx, session.ID)
	s.Require().NoError(err)

	got, err := s.registry.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Audience, 1)
	s.Equal(id, got.Audience[0].ID)
}

func (s *RegistrySuite) TestRemovePlayer() {
	session := s.createSession("ABCD")
	alice, _ := s.registry.AddPlayer(s.ctx, session.ID, "Alice")
	_, _ = s.registry.AddPlayer(s.ctx, session.ID, "Bob")

	s.Require().NoError(s.registry.RemovePlayer(s.ctx, session.ID, alice))

	players, _ := s.registry.Players(s.ctx, session.ID)
	s.Require().Len(players, 1)
	s.Equal("Bob", players[0].Name)
}

func (s *RegistrySuite) TestRemoveAbsentPlayerIsNoop() {
	session := s.createSession("ABCD")
	_, _ = s.registry.AddPlayer(s.ctx, session.ID, "Alice")

	s.NoError(s.registry.RemovePlayer(s.ctx, session.ID, "not-there"))

	players, _ := s.registry.Players(s.ctx, session.ID)
	s.Len(players, 1)
}

// Vote tests

func (s *RegistrySuite) installDuel(id model.SessionID) {
	err := s.registry.InstallDuel(s.ctx, id, model.DuelPair{
		Card1: model.Card{URL: "https://cards.example/1.jpg"},
		Card2: model.Card{URL: "https://cards.example/2.jpg"},
	})
	s.Require().NoError(err)
}

func (s *RegistrySuite) TestCastVoteWithoutDuelIsDefinedError() {
	session := s.createSession("ABCD")

	err := s.registry.CastVote(s.ctx, session.ID, 1, true)
	s.ErrorIs(err, model.ErrNoActiveDuel)
}

func (s *RegistrySuite) TestCastVoteRejectsBadSlot() {
	session := s.createSession("ABCD")
	s.installDuel(session.ID)

	s.ErrorIs(s.registry.CastVote(s.ctx, session.ID, 0, true), model.ErrInvalidSlot)
	s.ErrorIs(s.registry.CastVote(s.ctx, session.ID, 3, true), model.ErrInvalidSlot)
}

func (s *RegistrySuite) TestCastVoteRoutesByRole() {
	session := s.createSession("ABCD")
	s.installDuel(session.ID)

	s.Require().NoError(s.registry.CastVote(s.ctx, session.ID, 1, true))
	s.Require().NoError(s.registry.CastVote(s.ctx, session.ID, 1, false))
	s.Require().NoError(s.registry.CastVote(s.ctx, session.ID, 2, false))

	got, _ := s.registry.GetSession(s.ctx, session.ID)
	s.Equal(1, got.CurrentDuel.Card1.Votes)
	s.Equal(1, got.CurrentDuel.Card1.AudienceVotes)
	s.Equal(0, got.CurrentDuel.Card2.Votes)
	s.Equal(1, got.CurrentDuel.Card2.AudienceVotes)
}

func (s *RegistrySuite) TestConcurrentVotesAreNotLost() {
	session := s.createSession("ABCD")
	s.installDuel(session.ID)

	const voters = 50
	var wg sync.WaitGroup
	wg.Add(voters)
	for i := 0; i < voters; i++ {
		go func() {
			defer wg.Done()
			_ = s.registry.CastVote(s.ctx, session.ID, 1, true)
		}()
	}
	wg.Wait()

	got, _ := s.registry.GetSession(s.ctx, session.ID)
	s.Equal(voters, got.CurrentDuel.Card1.Votes)
}

func (s *RegistrySuite) TestInstallDuelResetsTallies() {
	session := s.createSession("ABCD")
	s.installDuel(session.ID)
	s.Require().NoError(s.registry.CastVote(s.ctx, session.ID, 1, true))

	s.installDuel(session.ID)

	got, _ := s.registry.GetSession(s.ctx, session.ID)
	s.Equal(0, got.CurrentDuel.Card1.Votes)
	s.Equal(0, got.CurrentDuel.Card1.AudienceVotes)
}

func (s *RegistrySuite) TestInstallDuelFailsWhenSessionGone() {
	err := s.registry.InstallDuel(s.ctx, "missing", model.DuelPair{})
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// CurrentDuel tests

func (s *RegistrySuite) TestCurrentDuelFailsWhenSessionGone() {
	_, err := s.registry.CurrentDuel(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *RegistrySuite) TestCurrentDuelWithoutDuelIsDefinedError() {
	session := s.createSession("ABCD")

	_, err := s.registry.CurrentDuel(s.ctx, session.ID)
	s.ErrorIs(err, model.ErrNoActiveDuel)
}

func (s *RegistrySuite) TestCurrentDuelSnapshotUnaffectedByLaterVotes() {
	session := s.createSession("ABCD")
	s.installDuel(session.ID)
	s.Require().NoError(s.registry.CastVote(s.ctx, session.ID, 1, true))

	pair, err := s.registry.CurrentDuel(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(1, pair.Card1.Votes)

	s.Require().NoError(s.registry.CastVote(s.ctx, session.ID, 1, true))
	s.Equal(1, pair.Card1.Votes)
}

func (s *RegistrySuite) TestCurrentDuelRacesVotesCleanly() {
	session := s.createSession("ABCD")
	s.installDuel(session.ID)

	const voters = 50
	var wg sync.WaitGroup
	wg.Add(voters * 2)
	for i := 0; i < voters; i++ {
		go func() {
			defer wg.Done()
			_ = s.registry.CastVote(s.ctx, session.ID, 1, true)
		}()
		go func() {
			defer wg.Done()
			pair, err := s.registry.CurrentDuel(s.ctx, session.ID)
			if err == nil {
				s.LessOrEqual(pair.Card1.Votes, voters)
			}
		}()
	}
	wg.Wait()

	pair, err := s.registry.CurrentDuel(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(voters, pair.Card1.Votes)
}

// DeleteSession tests

func (s *RegistrySuite) TestOperationsAfterDeleteReturnNotFound() {
	session := s.createSession("ABCD")
	s.Require().NoError(s.registry.DeleteSession(s.ctx, session.ID))

	_, err := s.registry.GetSession(s.ctx, session.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)

	_, err = s.registry.AddPlayer(s.ctx, session.ID, "Late")
	s.ErrorIs(err, model.ErrSessionNotFound)

	s.ErrorIs(s.registry.CastVote(s.ctx, session.ID, 1, true), model.ErrSessionNotFound)
}

func (s *RegistrySuite) TestDeleteSessionTwiceReturnsNotFound() {
	session := s.createSession("ABCD")

	s.Require().NoError(s.registry.DeleteSession(s.ctx, session.ID))
	s.ErrorIs(s.registry.DeleteSession(s.ctx, session.ID), model.ErrSessionNotFound)
}

func (s *RegistrySuite) lockCount() int {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	return len(s.registry.locks)
}

func (s *RegistrySuite) TestLockMapReleasedForGoneSessions() {
	session := s.createSession("ABCD")
	_, err := s.registry.AddPlayer(s.ctx, session.ID, "Alice")
	s.Require().NoError(err)

	s.Require().NoError(s.registry.DeleteSession(s.ctx, session.ID))
	s.Zero(s.lockCount())

	// Stale tokens keep hitting the dead id; none of these may pin a lock
	_, _ = s.registry.AddPlayer(s.ctx, session.ID, "Late")
	_, _ = s.registry.Players(s.ctx, session.ID)
	_, _ = s.registry.CurrentDuel(s.ctx, session.ID)
	_ = s.registry.DeleteSession(s.ctx, session.ID)
	s.Zero(s.lockCount())

	for i := 0; i < 100; i++ {
		_ = s.registry.CastVote(s.ctx, model.SessionID(fmt.Sprintf("gone-%d", i)), 1, true)
	}
	s.Zero(s.lockCount())
}

func (s *RegistrySuite) TestCodesNeverSharedBetweenLiveSessions() {
	first := s.createSession("ABCD")
	s.random.QueueCode("ABCD", "EFGH")
	second, err := s.registry.CreateSession(s.ctx, "Other", "pw")
	s.Require().NoError(err)

	firstID, _ := s.registry.ResolveCode(s.ctx, "ABCD")
	secondID, _ := s.registry.ResolveCode(s.ctx, "EFGH")
	s.Equal(first.ID, firstID)
	s.Equal(second.ID, secondID)
	s.NotEqual(firstID, secondID)
}
