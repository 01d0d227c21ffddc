package services_test

import (
	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
)

func (suite *LedgerServiceTestSuite) designate(admin domain.AccountID, allowance string) {
	_, err := suite.service.AdminCreate(suite.ctx, issuer, admin, suite.amount(allowance))
	suite.Require().NoError(err)
}

func (suite *LedgerServiceTestSuite) allowance() *domain.AdminInfo {
	info, err := suite.service.GetAdmin(suite.ctx, "TOK")
	suite.Require().NoError(err)
	return info
}

func (suite *LedgerServiceTestSuite) TestAdminCreate_Success() {
	suite.createTOK()

	event, err := suite.service.AdminCreate(suite.ctx, issuer, alice, suite.amount("100.00 TOK"))
	suite.Require().NoError(err)
	suite.Equal(domain.ActionAdminCreate, event.Action)
	suite.Equal([]domain.AccountID{issuer, alice}, event.Recipients)

	info := suite.allowance()
	suite.Equal(alice, info.Admin)
	suite.Equal("100.00 TOK", info.Balance.String())

	rec, err := suite.repos.Store.Get(suite.ctx, domain.TableAdmin, domain.GlobalScope, "TOK")
	suite.Require().NoError(err)
	suite.Equal(issuer, rec.Payer)
}

func (suite *LedgerServiceTestSuite) TestAdminCreate_ZeroAllowance() {
	suite.createTOK()
	suite.designate(alice, "0.00 TOK")
	suite.True(suite.allowance().Balance.IsZero())
}

func (suite *LedgerServiceTestSuite) TestAdminCreate_Rejections() {
	suite.createTOK()

	_, err := suite.service.AdminCreate(suite.ctx, alice, alice, suite.amount("1.00 TOK"))
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = suite.service.AdminCreate(suite.ctx, issuer, alice, suite.amount("-1.00 TOK"))
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.service.AdminCreate(suite.ctx, issuer, alice, suite.amount("1000.01 TOK"))
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.service.AdminCreate(suite.ctx, issuer, alice, suite.amount("1.000 TOK"))
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.service.AdminCreate(suite.ctx, issuer, alice, suite.amount("1.00 XYZ"))
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.service.AdminCreate(suite.ctx, issuer, "dave", suite.amount("1.00 TOK"))
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.service.GetAdmin(suite.ctx, "TOK")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.designate(alice, "1.00 TOK")
	_, err = suite.service.AdminCreate(suite.ctx, issuer, bob, suite.amount("1.00 TOK"))
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Equal(alice, suite.allowance().Admin)
}

func (suite *LedgerServiceTestSuite) TestAdminUpdate_RotatesAtomically() {
	suite.createTOK()
	suite.designate(alice, "100.00 TOK")

	event, err := suite.service.AdminUpdate(suite.ctx, alice, alice, bob, suite.amount("25.00 TOK"))
	suite.Require().NoError(err)
	suite.Equal(alice, event.From)
	suite.Equal(bob, event.To)

	info := suite.allowance()
	suite.Equal(bob, info.Admin)
	suite.Equal("25.00 TOK", info.Balance.String())

	_, err = suite.service.AdminUpdate(suite.ctx, alice, alice, carol, suite.amount("1.00 TOK"))
	suite.ErrorIs(err, apperrors.ErrUnauthorized, "the previous admin lost authority")
}

func (suite *LedgerServiceTestSuite) TestAdminUpdate_Rejections() {
	suite.createTOK()

	_, err := suite.service.AdminUpdate(suite.ctx, alice, alice, bob, suite.amount("1.00 TOK"))
	suite.ErrorIs(err, apperrors.ErrNotFound, "no admin designated yet")

	suite.designate(alice, "100.00 TOK")

	testCases := []struct {
		name     string
		caller   domain.AccountID
		oldAdmin domain.AccountID
		newAdmin domain.AccountID
		quantity string
		err      error
	}{
		{"issuer cannot rotate", issuer, alice, bob, "1.00 TOK", apperrors.ErrUnauthorized},
		{"caller is not the current admin", bob, bob, carol, "1.00 TOK", apperrors.ErrUnauthorized},
		{"same account", alice, alice, alice, "1.00 TOK", apperrors.ErrSameAccount},
		{"allowance above max supply", alice, alice, bob, "2000.00 TOK", apperrors.ErrInvalidAmount},
		{"unregistered new admin", alice, alice, "dave", "1.00 TOK", apperrors.ErrNotFound},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.service.AdminUpdate(suite.ctx, tc.caller, tc.oldAdmin, tc.newAdmin, suite.amount(tc.quantity))
			suite.ErrorIs(err, tc.err)

			info := suite.allowance()
			suite.Equal(alice, info.Admin)
			suite.Equal("100.00 TOK", info.Balance.String())
		})
	}
}

func (suite *LedgerServiceTestSuite) TestTransferAdmin_DrawsAllowance() {
	suite.createTOK()
	suite.issue(alice, "100.00 TOK")
	suite.designate(alice, "30.00 TOK")

	_, err := suite.service.TransferAdmin(suite.ctx, alice, alice, bob, suite.amount("20.00 TOK"), "grant")
	suite.Require().NoError(err)

	suite.Equal("80.00 TOK", suite.balance(alice, "TOK"))
	suite.Equal("20.00 TOK", suite.balance(bob, "TOK"))
	suite.Equal("10.00 TOK", suite.allowance().Balance.String())
	suite.Equal("100.00 TOK", suite.supply("TOK"))

	_, err = suite.service.TransferAdmin(suite.ctx, alice, alice, bob, suite.amount("20.00 TOK"), "")
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance, "allowance exhausted")
	suite.Equal("80.00 TOK", suite.balance(alice, "TOK"))
	suite.Equal("10.00 TOK", suite.allowance().Balance.String())
}

func (suite *LedgerServiceTestSuite) TestTransferAdmin_Rejections() {
	suite.createTOK()
	suite.issue(alice, "5.00 TOK")
	suite.issue(bob, "50.00 TOK")
	suite.designate(alice, "30.00 TOK")

	_, err := suite.service.TransferAdmin(suite.ctx, bob, bob, carol, suite.amount("1.00 TOK"), "")
	suite.ErrorIs(err, apperrors.ErrUnauthorized, "bob is not the admin")

	_, err = suite.service.TransferAdmin(suite.ctx, issuer, alice, carol, suite.amount("1.00 TOK"), "")
	suite.ErrorIs(err, apperrors.ErrUnauthorized, "issuer cannot act for the admin")

	_, err = suite.service.TransferAdmin(suite.ctx, alice, alice, alice, suite.amount("1.00 TOK"), "")
	suite.ErrorIs(err, apperrors.ErrSameAccount)

	_, err = suite.service.TransferAdmin(suite.ctx, alice, alice, carol, suite.amount("6.00 TOK"), "")
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance, "allowance covers it but the balance does not")

	suite.Equal("5.00 TOK", suite.balance(alice, "TOK"))
	suite.Equal("30.00 TOK", suite.allowance().Balance.String())
	suite.noBalance(carol, "TOK")
}

func (suite *LedgerServiceTestSuite) TestAdmin_HasNoSupplyAuthority() {
	suite.createTOK()
	suite.designate(alice, "500.00 TOK")

	_, err := suite.service.Issue(suite.ctx, alice, alice, suite.amount("1.00 TOK"), "")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = suite.service.Retire(suite.ctx, alice, suite.amount("1.00 TOK"), "")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Equal("0.00 TOK", suite.supply("TOK"))
}
