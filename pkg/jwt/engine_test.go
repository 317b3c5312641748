package jwt_test

import (
	"testing"
	"time"

	"github.com/intranet-lab/backend/pkg/jwt"
	"github.com/stretchr/testify/require"
)

func TestJWT(t *testing.T) {
	engine := jwt.NewEngine[string]("secret", time.Minute)
	token, err := engine.Generate("sub", "abc")
	require.Nil(t, err)

	msg, err := engine.Verify(token)
	require.Nil(t, err)
	require.Equal(t, msg, "abc")
}

func TestJWTExpiration(t *testing.T) {
	engine := jwt.NewEngine[string]("secret", time.Nanosecond)
	token, err := engine.Generate("sub", "abc")
	require.Nil(t, err)

	_, err = engine.Verify(token)
	require.NotNil(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	engine := jwt.NewEngine[string]("secret", time.Minute)
	token, err := engine.Generate("sub", "abc")
	require.Nil(t, err)

	other := jwt.NewEngine[string]("not secret", time.Minute)
	_, err = other.Verify(token)
	require.NotNil(t, err)
}
