package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/dto"
	"github.com/SscSPs/token_ledger/internal/handlers"
	"github.com/SscSPs/token_ledger/internal/middleware"
	"github.com/SscSPs/token_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockLedgerService  *MockLedgerService
	mockAccountService *MockAccountService
	jwtSecret          string
}

func (suite *LedgerHandlerTestSuite) SetupSuite() {
	suite.Require().NoError(handlers.RegisterValidators())
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough" // Use a test secret

	suite.mockLedgerService = new(MockLedgerService)
	suite.mockAccountService = new(MockAccountService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret, JWTIssuer: "token-ledger-test", IsProduction: true}
	services := &portssvc.ServiceContainer{
		Ledger:   suite.mockLedgerService,
		Accounts: suite.mockAccountService,
	}
	handlers.RegisterRoutes(suite.router, cfg, services, handlers.RouteDeps{})
}

// generateTestToken creates a JWT for the given account.
func (suite *LedgerHandlerTestSuite) generateTestToken(account string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "token-ledger-test",
		Subject:   account,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *LedgerHandlerTestSuite) do(method, url, account string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(account))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerHandlerTestSuite) amount(s string) domain.Amount {
	a, err := domain.ParseAmount(s)
	suite.Require().NoError(err)
	return a
}

func (suite *LedgerHandlerTestSuite) decodeError(w *httptest.ResponseRecorder) handlers.ErrorResponse {
	var body handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// --- Test Cases ---

func (suite *LedgerHandlerTestSuite) TestTransfer_Success() {
	quantity := suite.amount("10.0000 TOK")
	event := &domain.LedgerEvent{
		ID:         "evt_01h455vb4pex5vsknk084sn02q",
		Action:     domain.ActionTransfer,
		Code:       "TOK",
		Actor:      "alice",
		From:       "alice",
		To:         "bob",
		Quantity:   &quantity,
		Memo:       "rent",
		Recipients: []domain.AccountID{"alice", "bob"},
		OccurredAt: time.Now().UTC(),
	}
	suite.mockLedgerService.On("Transfer", mock.Anything, domain.AccountID("alice"), domain.AccountID("alice"), domain.AccountID("bob"), quantity, "rent").
		Return(event, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transfers", "alice", dto.TransferRequest{
		From: "alice", To: "bob", Quantity: "10.0000 TOK", Memo: "rent",
	})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.EventResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("transfer", res.Action)
	suite.Equal("10.0000 TOK", res.Quantity)
	suite.Equal([]string{"alice", "bob"}, res.Recipients)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestTransfer_ErrorKinds() {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"overdrawn", apperrors.Wrap(apperrors.ErrInsufficientBalance, "alice holds 1.0000 TOK"), http.StatusUnprocessableEntity, "InsufficientBalance"},
		{"same account", apperrors.ErrSameAccount, http.StatusUnprocessableEntity, "SameAccount"},
		{"wrong caller", apperrors.Wrap(apperrors.ErrUnauthorized, "alice"), http.StatusForbidden, "Unauthorized"},
		{"unknown currency", apperrors.Wrap(apperrors.ErrNotFound, "TOK"), http.StatusNotFound, "NotFound"},
		{"memo too long", apperrors.Wrap(apperrors.ErrValidation, "memo"), http.StatusBadRequest, "Validation"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			suite.mockLedgerService.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(nil, tt.err).Once()

			w := suite.do(http.MethodPost, "/api/v1/transfers", "alice", dto.TransferRequest{
				From: "alice", To: "bob", Quantity: "1.0000 TOK",
			})

			suite.Equal(tt.status, w.Code)
			suite.Equal(tt.kind, suite.decodeError(w).Kind)
		})
	}
}

func (suite *LedgerHandlerTestSuite) TestTransfer_InternalErrorHidesDetails() {
	suite.mockLedgerService.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewAppError(500, "failed to commit transaction", errors.New("disk full"))).Once()

	w := suite.do(http.MethodPost, "/api/v1/transfers", "alice", dto.TransferRequest{
		From: "alice", To: "bob", Quantity: "1.0000 TOK",
	})

	suite.Equal(http.StatusInternalServerError, w.Code)
	body := suite.decodeError(w)
	suite.Equal("Internal", body.Kind)
	suite.NotContains(body.Error, "disk full")
}

func (suite *LedgerHandlerTestSuite) TestTransfer_InvalidBody() {
	w := suite.do(http.MethodPost, "/api/v1/transfers", "alice", dto.TransferRequest{
		From: "alice", To: "bob", Quantity: "ten TOK",
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/transfers", "alice", dto.TransferRequest{
		From: "Alice!", To: "bob", Quantity: "1.0000 TOK",
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.mockLedgerService.AssertNotCalled(suite.T(), "Transfer")
}

func (suite *LedgerHandlerTestSuite) TestTransfer_RequiresAuthentication() {
	w := suite.do(http.MethodPost, "/api/v1/transfers", "", dto.TransferRequest{
		From: "alice", To: "bob", Quantity: "1.0000 TOK",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "Transfer")
}

func (suite *LedgerHandlerTestSuite) TestCreateCurrency() {
	maxSupply := suite.amount("1000000.0000 TOK")
	suite.mockLedgerService.On("Create", mock.Anything, domain.AccountID("issuer"), domain.AccountID("issuer"), maxSupply).
		Return(&domain.LedgerEvent{Action: domain.ActionCreate, Code: "TOK", Actor: "issuer", Quantity: &maxSupply}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/currencies", "issuer", dto.CreateCurrencyRequest{
		Issuer: "issuer", MaximumSupply: "1000000.0000 TOK",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestIssue_QuantityMustMatchPathCode() {
	w := suite.do(http.MethodPost, "/api/v1/currencies/TOK/issue", "issuer", dto.IssueRequest{
		To: "alice", Quantity: "5.00 OTHER",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("InvalidAmount", suite.decodeError(w).Kind)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "Issue")
}

func (suite *LedgerHandlerTestSuite) TestIssue_SupplyExceeded() {
	quantity := suite.amount("5.00 TOK")
	suite.mockLedgerService.On("Issue", mock.Anything, domain.AccountID("issuer"), domain.AccountID("alice"), quantity, "").
		Return(nil, apperrors.ErrSupplyExceeded).Once()

	w := suite.do(http.MethodPost, "/api/v1/currencies/TOK/issue", "issuer", dto.IssueRequest{
		To: "alice", Quantity: "5.00 TOK",
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("SupplyExceeded", suite.decodeError(w).Kind)
}

func (suite *LedgerHandlerTestSuite) TestGetSupply() {
	supply := suite.amount("12.50 TOK")
	suite.mockLedgerService.On("GetSupply", mock.Anything, domain.SymbolCode("TOK")).Return(&supply, nil).Once()
	suite.mockLedgerService.On("GetSupply", mock.Anything, domain.SymbolCode("NOPE")).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/currencies/TOK/supply", "alice", nil)
	suite.Equal(http.StatusOK, w.Code)
	var res dto.SupplyResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("12.50 TOK", res.Supply)

	w = suite.do(http.MethodGet, "/api/v1/currencies/NOPE/supply", "alice", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/currencies/tok/supply", "alice", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestListBalances_Pagination() {
	balances := []domain.AccountBalance{
		{Owner: "alice", Balance: suite.amount("1.00 AAA")},
		{Owner: "alice", Balance: suite.amount("2.0 BBB")},
	}
	suite.mockLedgerService.On("ListBalances", mock.Anything, domain.AccountID("alice"), "", 2).
		Return(balances, "next-page", nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/alice/balances?limit=2", "bob", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.ListBalancesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Len(res.Balances, 2)
	suite.Equal("2.0 BBB", res.Balances[1].Balance)
	suite.Require().NotNil(res.NextToken)
	suite.Equal("next-page", *res.NextToken)

	w = suite.do(http.MethodGet, "/api/v1/accounts/alice/balances?limit=0", "bob", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestOpenAndCloseBalance() {
	symbol, err := domain.ParseSymbol("4,TOK")
	suite.Require().NoError(err)
	suite.mockLedgerService.On("Open", mock.Anything, domain.AccountID("bob"), domain.AccountID("alice"), symbol, domain.AccountID("bob")).
		Return(&domain.LedgerEvent{Action: domain.ActionOpen, Code: "TOK", Actor: "bob"}, nil).Once()
	suite.mockLedgerService.On("Close", mock.Anything, domain.AccountID("bob"), domain.AccountID("alice"), domain.SymbolCode("TOK")).
		Return(nil, apperrors.Wrap(apperrors.ErrUnauthorized, "alice")).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/alice/balances", "bob", dto.OpenBalanceRequest{Symbol: "4,TOK", RAMPayer: "bob"})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodDelete, "/api/v1/accounts/alice/balances/TOK", "bob", nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestAdminRoutes() {
	allowance := suite.amount("100.0000 TOK")
	suite.mockLedgerService.On("AdminCreate", mock.Anything, domain.AccountID("issuer"), domain.AccountID("carol"), allowance).
		Return(&domain.LedgerEvent{Action: domain.ActionAdminCreate, Code: "TOK", Actor: "issuer"}, nil).Once()
	suite.mockLedgerService.On("GetAdmin", mock.Anything, domain.SymbolCode("TOK")).
		Return(&domain.AdminInfo{Admin: "carol", Balance: allowance}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/currencies/TOK/admin", "issuer", dto.AdminCreateRequest{Admin: "carol", Allowance: "100.0000 TOK"})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodGet, "/api/v1/currencies/TOK/admin", "alice", nil)
	suite.Equal(http.StatusOK, w.Code)
	var res dto.AdminResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("carol", res.Admin)
	suite.Equal("100.0000 TOK", res.Allowance)
}

func (suite *LedgerHandlerTestSuite) TestAPIKeyAuthentication() {
	suite.mockAccountService.On("ValidateKey", mock.Anything, "key-id.secret").Return(domain.AccountID("alice"), nil).Once()
	suite.mockAccountService.On("GetAccount", mock.Anything, domain.AccountID("alice")).
		Return(&domain.DirectoryEntry{Account: "alice"}, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	req.Header.Set(middleware.APIKeyHeader, "key-id.secret")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("alice", res.Account)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestRegisterIsPublic() {
	key := &domain.AccountKey{ID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427", Account: "dave", Name: "default", CreatedAt: time.Now()}
	suite.mockAccountService.On("Register", mock.Anything, domain.AccountID("dave")).Return("plain.key", key, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{Account: "dave"})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var res dto.RegisterResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("plain.key", res.Key.Key)
	suite.Equal(key.ID, res.Key.Details.ID)
}

func (suite *LedgerHandlerTestSuite) TestTokenRejectsUnknownKey() {
	suite.mockAccountService.On("IssueToken", mock.Anything, "bogus").
		Return("", time.Time{}, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid API key")).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/token", "", dto.TokenRequest{APIKey: "bogus"})

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestRevokeKey_InvalidID() {
	w := suite.do(http.MethodDelete, "/api/v1/keys/not-a-uuid", "alice", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "RevokeKey")
}

// --- Run Test Suite ---
func TestLedgerHandler(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
