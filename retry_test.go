package roboat

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryRefreshesToken(t *testing.T) {
	c := NewClient(WithXcsrf("old"))
	calls := 0

	res, err := withXcsrfRetry(context.Background(), c, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &InvalidXcsrfError{Token: "new"}
		}
		// the second attempt must see the new token
		return c.xcsrf(), nil
	})

	require.NoError(t, err)
	assert.Equal(t, "new", res)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "new", c.Xcsrf())
}

func TestRetryStopsAfterSecondFailure(t *testing.T) {
	c := NewClient()
	calls := 0

	_, err := withXcsrfRetry(context.Background(), c, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, &InvalidXcsrfError{Token: "first"}
		}
		return 0, &InvalidXcsrfError{Token: "second"}
	})

	var xe *InvalidXcsrfError
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, "second", xe.Token)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "first", c.Xcsrf())
}

func TestRetryOtherErrorsNotRetried(t *testing.T) {
	errs := []error{
		ErrTooManyRequests,
		ErrXcsrfNotReturned,
		&ChallengeRequiredError{Info: ChallengeInfo{ID: "x"}},
		&UnknownRobloxErrorCodeError{Code: 1, Message: "m"},
	}
	for _, e := range errs {
		c := NewClient(WithXcsrf("keep"))
		calls := 0
		err := withXcsrfRetryNoResult(context.Background(), c, func(ctx context.Context) error {
			calls++
			return e
		})
		assert.Equal(t, e, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, "keep", c.Xcsrf())
	}
}

func TestRetrySuccessFirstTry(t *testing.T) {
	c := NewClient()
	calls := 0
	err := withXcsrfRetryNoResult(context.Background(), c, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryOverHTTP(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("x-csrf-token") != "fresh" {
			w.Header().Set("x-csrf-token", "fresh")
			writeJSON(w, http.StatusForbidden, `{"errors":[{"code":0,"message":"Token Validation Failed"}]}`)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	}), WithRoblosecurity("cookie"))

	require.NoError(t, c.DeclineTrade(context.Background(), 42))
	assert.EqualValues(t, 2, hits.Load())
	assert.Equal(t, "fresh", c.Xcsrf())

	// the token is now valid, a second call needs a single request
	require.NoError(t, c.AcceptTrade(context.Background(), 43))
	assert.EqualValues(t, 3, hits.Load())
}

func TestRetryWithoutErrorsList(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("x-csrf-token") != "fresh" {
			w.Header().Set("x-csrf-token", "fresh")
			writeJSON(w, http.StatusForbidden, `{"message":"Forbidden"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	}), WithRoblosecurity("cookie"))

	require.NoError(t, c.DeclineTrade(context.Background(), 42))
	assert.EqualValues(t, 2, hits.Load())
	assert.Equal(t, "fresh", c.Xcsrf())
}
