// internal/models/user_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPayoutMethodNullsOtherVariant(t *testing.T) {
	u := &User{Name: "Jenna Miles"}
	u.SetPayoutMethod(BankDetails{
		AccountHolderName: "Jenna R. Miles",
		BankName:          "Chase Bank",
		SwiftBic:          "CHASUS33",
		AccountNumberIban: "******1234",
		Country:           "United States",
	})
	require.NotNil(t, u.BankName)
	assert.Nil(t, u.PaypalEmail)

	u.SetPayoutMethod(PayPalDetails{Email: "jenna@example.com"})

	assert.Equal(t, PayoutTypePayPal, *u.PayoutType)
	assert.Equal(t, "jenna@example.com", *u.PaypalEmail)
	assert.Nil(t, u.AccountHolderName)
	assert.Nil(t, u.BankName)
	assert.Nil(t, u.SwiftBic)
	assert.Nil(t, u.AccountNumberIban)
	assert.Nil(t, u.Country)
}

func TestPayoutMethodReconstruction(t *testing.T) {
	paypal := PayoutTypePayPal
	empty := ""
	u := &User{PayoutType: &paypal, PaypalEmail: &empty}
	assert.Nil(t, u.PayoutMethod(), "paypal without email has no method")

	u.SetPayoutMethod(PayPalDetails{Email: "alex@example.com"})
	assert.Equal(t, PayPalDetails{Email: "alex@example.com"}, u.PayoutMethod())

	bank := BankDetails{AccountHolderName: "A", BankName: "B", SwiftBic: "C", AccountNumberIban: "D", Country: "E"}
	u.SetPayoutMethod(bank)
	assert.Equal(t, bank, u.PayoutMethod())

	u.SetPayoutMethod(nil)
	assert.Equal(t, bank, u.PayoutMethod(), "nil leaves columns untouched")
}

func TestAccountPassword(t *testing.T) {
	a := &Account{}
	require.NoError(t, a.SetPassword("S3cret!pass"))
	assert.NoError(t, a.CheckPassword("S3cret!pass"))
	assert.Error(t, a.CheckPassword("wrong"))
}

func TestPermissionsFor(t *testing.T) {
	admin := PermissionsFor(RoleAdmin)
	assert.True(t, admin.CanManagePayouts)

	user := PermissionsFor(RoleUser)
	assert.True(t, user.CanRegisterSongs)
	assert.True(t, user.CanManageEarnings)
	assert.False(t, user.CanApproveSongs)
	assert.False(t, user.CanManageUsers)

	assert.Equal(t, Permissions{}, PermissionsFor("guest"))
}

func TestCatalogs(t *testing.T) {
	assert.Equal(t, SocietyOther, ProSocieties[len(ProSocieties)-1])
	assert.Contains(t, ProSocieties, "ASCAP (USA)")
	assert.Len(t, WriterRoles, 7)
}
