package idempotency

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		key           *string
		expectedKey   string
		expectedFound bool
	}{
		{name: "no key", expectedFound: false},
		{name: "empty key", key: ptr(""), expectedFound: false},
		{name: "key present", key: ptr("run-2026-10-17-0001"), expectedKey: "run-2026-10-17-0001", expectedFound: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			if tc.key != nil {
				ctx = WithKey(ctx, *tc.key)
			}

			key, found := FromContext(ctx)
			require.Equal(t, tc.expectedFound, found)
			require.Equal(t, tc.expectedKey, key)
		})
	}
}

func TestWithKey_Overwrites(t *testing.T) {
	t.Parallel()

	ctx := WithKey(WithKey(t.Context(), "first-key-12345678"), "second-key-1234567")

	key, found := FromContext(ctx)
	require.True(t, found)
	require.Equal(t, "second-key-1234567", key)
}

func ptr(s string) *string {
	return &s
}
