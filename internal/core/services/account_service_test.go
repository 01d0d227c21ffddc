package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/core/services"
	ldbstore "github.com/SscSPs/token_ledger/internal/repositories/database/leveldb"
	"github.com/SscSPs/token_ledger/internal/utils"
	"github.com/SscSPs/token_ledger/pkg/database"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "test-secret-key-that-is-long-enough"

type AccountServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	repos   portsrepo.RepositoryProvider
	now     time.Time
	service portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	db, err := database.NewMemLevelDB()
	suite.Require().NoError(err)

	suite.ctx = context.Background()
	suite.repos = ldbstore.NewRepositoryProvider(db)
	suite.now = time.Now().UTC()
	suite.service = services.NewAccountService(
		suite.repos,
		services.WithTokenSigning(testJWTSecret, time.Hour, "token-ledger"),
		services.WithAccountClock(func() time.Time { return suite.now }),
	)
}

func (suite *AccountServiceTestSuite) TearDownTest() {
	suite.NoError(suite.repos.Store.Close())
}

func (suite *AccountServiceTestSuite) TestRegister_Success() {
	plaintext, key, err := suite.service.Register(suite.ctx, "alice")

	suite.Require().NoError(err)
	suite.Require().NotNil(key)
	suite.True(strings.HasPrefix(plaintext, key.ID+"."))
	suite.NotContains(key.KeyHash, plaintext)
	suite.Equal(domain.AccountID("alice"), key.Account)

	entry, err := suite.service.GetAccount(suite.ctx, "alice")
	suite.Require().NoError(err)
	suite.Equal(domain.AccountID("alice"), entry.CreatedBy)

	account, err := suite.service.ValidateKey(suite.ctx, plaintext)
	suite.Require().NoError(err)
	suite.Equal(domain.AccountID("alice"), account)
}

func (suite *AccountServiceTestSuite) TestRegister_Rejections() {
	_, _, err := suite.service.Register(suite.ctx, "Not-Valid")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, _, err = suite.service.Register(suite.ctx, "alice")
	suite.Require().NoError(err)
	_, _, err = suite.service.Register(suite.ctx, "alice")
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	keys, err := suite.service.ListKeys(suite.ctx, "alice")
	suite.Require().NoError(err)
	suite.Len(keys, 1, "the failed registration added no key")
}

func (suite *AccountServiceTestSuite) TestValidateKey_Rejections() {
	plaintext, key, err := suite.service.Register(suite.ctx, "alice")
	suite.Require().NoError(err)

	for _, candidate := range []string{"", "no-separator", key.ID + ".wrong", "unknown." + strings.SplitN(plaintext, ".", 2)[1]} {
		_, err := suite.service.ValidateKey(suite.ctx, candidate)
		suite.ErrorIs(err, apperrors.ErrUnauthorized, candidate)
	}
}

func (suite *AccountServiceTestSuite) TestValidateKey_LastUsedIsCoarse() {
	plaintext, _, err := suite.service.Register(suite.ctx, "alice")
	suite.Require().NoError(err)

	lastUsed := func() time.Time {
		keys, err := suite.service.ListKeys(suite.ctx, "alice")
		suite.Require().NoError(err)
		suite.Require().Len(keys, 1)
		suite.Require().NotNil(keys[0].LastUsedAt)
		return *keys[0].LastUsedAt
	}

	first := suite.now
	_, err = suite.service.ValidateKey(suite.ctx, plaintext)
	suite.Require().NoError(err)
	suite.WithinDuration(first, lastUsed(), time.Millisecond)

	suite.now = first.Add(30 * time.Second)
	_, err = suite.service.ValidateKey(suite.ctx, plaintext)
	suite.Require().NoError(err)
	suite.WithinDuration(first, lastUsed(), time.Millisecond, "a recent use is not rewritten")

	suite.now = first.Add(2 * time.Minute)
	_, err = suite.service.ValidateKey(suite.ctx, plaintext)
	suite.Require().NoError(err)
	suite.WithinDuration(suite.now, lastUsed(), time.Millisecond)
}

func (suite *AccountServiceTestSuite) TestCreateKey_ExpiresAndIsRevokedOnUse() {
	_, _, err := suite.service.Register(suite.ctx, "alice")
	suite.Require().NoError(err)

	ttl := time.Minute
	plaintext, key, err := suite.service.CreateKey(suite.ctx, "alice", "ci", &ttl)
	suite.Require().NoError(err)
	suite.Require().NotNil(key.ExpiresAt)

	_, err = suite.service.ValidateKey(suite.ctx, plaintext)
	suite.Require().NoError(err)

	suite.now = suite.now.Add(2 * time.Minute)
	_, err = suite.service.ValidateKey(suite.ctx, plaintext)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	keys, err := suite.service.ListKeys(suite.ctx, "alice")
	suite.Require().NoError(err)
	suite.Len(keys, 1, "expired key was deleted")
}

func (suite *AccountServiceTestSuite) TestCreateKey_UnknownAccount() {
	_, _, err := suite.service.CreateKey(suite.ctx, "ghost", "ci", nil)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, _, err = suite.service.CreateKey(suite.ctx, "ghost", "", nil)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestRevokeKey() {
	aliceKey, key, err := suite.service.Register(suite.ctx, "alice")
	suite.Require().NoError(err)
	_, _, err = suite.service.Register(suite.ctx, "bob")
	suite.Require().NoError(err)

	err = suite.service.RevokeKey(suite.ctx, "bob", key.ID)
	suite.ErrorIs(err, apperrors.ErrNotFound, "keys of other accounts are invisible")

	suite.Require().NoError(suite.service.RevokeKey(suite.ctx, "alice", key.ID))
	_, err = suite.service.ValidateKey(suite.ctx, aliceKey)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AccountServiceTestSuite) TestIssueToken() {
	plaintext, _, err := suite.service.Register(suite.ctx, "alice")
	suite.Require().NoError(err)

	token, expiresAt, err := suite.service.IssueToken(suite.ctx, plaintext)
	suite.Require().NoError(err)
	suite.True(expiresAt.After(time.Now()))

	claims, err := utils.ParseAndValidateJWT(token, testJWTSecret, "token-ledger")
	suite.Require().NoError(err)
	suite.Equal("alice", claims.Subject)

	_, _, err = suite.service.IssueToken(suite.ctx, "bogus.key")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
