package broker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/imagedrive/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_Success(t *testing.T) {
	exp := time.Now().Add(1 * time.Hour).UTC().Truncate(time.Second)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req acquireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pool-1", req.IdentityPoolID)

		json.NewEncoder(w).Encode(Credentials{
			AccessKeyID:     "AKID",
			SecretAccessKey: "SECRET",
			SessionToken:    "TOKEN",
			Expiration:      exp,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pool-1", 5*time.Second)
	creds, err := c.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "AKID", creds.AccessKeyID)
	assert.Equal(t, "SECRET", creds.SecretAccessKey)
	assert.Equal(t, exp, creds.Expiration.UTC())
	assert.False(t, creds.Expired(exp.Add(-time.Minute)))
	assert.True(t, creds.Expired(exp.Add(time.Minute)))
}

func TestAcquire_ExpirationFromSessionToken(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("broker-secret"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Credentials{
			AccessKeyID:     "AKID",
			SecretAccessKey: "SECRET",
			SessionToken:    signed,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pool-1", 5*time.Second)
	creds, err := c.Acquire(context.Background())
	require.NoError(t, err)

	assert.WithinDuration(t, exp, creds.Expiration, time.Second)
}

func TestAcquire_Failures(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "pool-1", 5*time.Second)
		_, err := c.Acquire(context.Background())
		assert.True(t, errors.Is(err, common.ErrCredentials))
	})

	t.Run("incomplete credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(Credentials{AccessKeyID: "AKID"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "pool-1", 5*time.Second)
		_, err := c.Acquire(context.Background())
		assert.True(t, errors.Is(err, common.ErrCredentials))
	})

	t.Run("unreachable broker", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "pool-1", time.Second)
		_, err := c.Acquire(context.Background())
		assert.True(t, errors.Is(err, common.ErrCredentials))
	})

	t.Run("already-expired credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(Credentials{
				AccessKeyID:     "AKID",
				SecretAccessKey: "SECRET",
				Expiration:      time.Now().Add(-time.Minute),
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "pool-1", 5*time.Second)
		_, err := c.Acquire(context.Background())
		assert.True(t, errors.Is(err, common.ErrCredentials))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{"))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "pool-1", 5*time.Second)
		_, err := c.Acquire(context.Background())
		assert.True(t, errors.Is(err, common.ErrCredentials))
	})
}

func Test_tokenExpiration_NotAJWT(t *testing.T) {
	assert.True(t, tokenExpiration("").IsZero())
	assert.True(t, tokenExpiration("opaque-session-token").IsZero())
}
