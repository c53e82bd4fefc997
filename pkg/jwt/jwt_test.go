package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

var identity = pkgjwt.Identity{UserID: "u-1", BusinessID: "biz-1", Role: "bodeguero"}

func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "stock-ledger-test", identity, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "stock-ledger-test", identity, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "stock-ledger-test", identity, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestJWT_SinNegocio_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "stock-ledger-test", pkgjwt.Identity{UserID: "u-1"}, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestJWT_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "x", identity, 60)
	assert.Error(t, err)
}
