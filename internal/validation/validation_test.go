package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/poseidon/internal/domain"
)

func TestValidPassword(t *testing.T) {
	tests := []struct {
		pw   string
		want bool
	}{
		{"Password123&", true},
		{"Abcdef1!", true},
		{"Ab1!", false},
		{"password123&", false},
		{"Password&&&&", false},
		{"Password1234", false},
		{"", false},
		{"Pässwörd1!", true},
		{"Abcdefg1é", true},
		{"Ébcdefg1!", false},
		{"Abcdefg١!", false},
		{"Abcdefg1\n", false},
		{"Abcdef1!\r\n", false},
		{"Abc\u2028def1!", false},
		{"Abcd efg1", true},
	}
	for _, tt := range tests {
		t.Run(tt.pw, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.pw))
		})
	}
}

func TestStructValid(t *testing.T) {
	v := New()

	err := v.Struct(&domain.BidList{Account: "acc", Type: "type", BidQuantity: 10})
	assert.NoError(t, err)
}

func TestStructUsesFormNamesAndMessages(t *testing.T) {
	v := New()

	err := v.Struct(&domain.BidList{BidQuantity: 0.5})
	require.Error(t, err)

	verrs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Account is mandatory", verrs["account"])
	assert.Equal(t, "Type is mandatory", verrs["type"])
	assert.Equal(t, "Bid Quantity must be at least 1.0", verrs["bidQuantity"])
	assert.Len(t, verrs, 3)
}

func TestStructCurvePoint(t *testing.T) {
	v := New()

	err := v.Struct(&domain.CurvePoint{Term: 1, Value: 0})
	verrs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Value must be at least 1.0", verrs["value"])
	assert.NotContains(t, verrs, "term")
	assert.NotContains(t, verrs, "curveId")

	assert.NoError(t, v.Struct(&domain.CurvePoint{CurveID: 0, Term: 1, Value: 1}))
}

func TestStructRuleName(t *testing.T) {
	v := New()

	err := v.Struct(&domain.RuleName{Name: "n", Description: "d", JSON: "{}", Template: "t"})
	verrs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, Errors{
		"sqlStr":  "SQL is mandatory",
		"sqlPart": "SQL Part is mandatory",
	}, verrs)
}

func TestStructUserPasswordRules(t *testing.T) {
	v := New()
	valid := domain.User{Username: "jdoe", Password: "Password123&", Fullname: "John Doe", Role: domain.RoleUser}
	require.NoError(t, v.Struct(&valid))

	tests := []struct {
		name  string
		edit  func(u *domain.User)
		field string
		msg   string
	}{
		{"empty username", func(u *domain.User) { u.Username = "" }, "username", "Username is mandatory"},
		{"empty password", func(u *domain.User) { u.Password = "" }, "password", "Password is mandatory"},
		{"weak password", func(u *domain.User) { u.Password = "password" }, "password", PasswordMessage},
		{"empty fullname", func(u *domain.User) { u.Fullname = "" }, "fullname", "FullName is mandatory"},
		{"empty role", func(u *domain.User) { u.Role = "" }, "role", "Role is mandatory"},
		{"unknown role", func(u *domain.User) { u.Role = "ROOT" }, "role", "must be one of: ADMIN USER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.edit(&u)
			verrs, ok := AsErrors(v.Struct(&u))
			require.True(t, ok)
			assert.Equal(t, tt.msg, verrs[tt.field])
		})
	}
}

func TestErrorsMergeKeepsFirst(t *testing.T) {
	e := Errors{"term": "must be a number"}
	e.Merge(Errors{"term": "Term must be at least 1.0", "value": "Value must be at least 1.0"})

	assert.Equal(t, "must be a number", e["term"])
	assert.Equal(t, "Value must be at least 1.0", e["value"])
}

func TestAsErrorsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create bid: %w", Errors{"account": "Account is mandatory"})

	verrs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Account is mandatory", verrs["account"])

	_, ok = AsErrors(errors.New("boom"))
	assert.False(t, ok)
}

func TestErrorsMessageIsSorted(t *testing.T) {
	e := Errors{"type": "Type is mandatory", "account": "Account is mandatory"}
	assert.Equal(t, "validation failed: account: Account is mandatory; type: Type is mandatory", e.Error())
}
