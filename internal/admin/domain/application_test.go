package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	t.Parallel()

	all := []ApplicationStatus{
		StatusSubmitted, StatusUnderReview, StatusApproved,
		StatusRejected, StatusInfoRequested, StatusCancelled,
	}

	legal := map[ApplicationStatus][]ApplicationStatus{
		StatusSubmitted:     {StatusUnderReview, StatusCancelled},
		StatusUnderReview:   {StatusApproved, StatusRejected, StatusInfoRequested, StatusCancelled},
		StatusInfoRequested: {StatusUnderReview, StatusCancelled},
		StatusApproved:      {},
		StatusRejected:      {},
		StatusCancelled:     {},
	}

	t.Run("every pair matches the lifecycle table", func(t *testing.T) {
		for _, from := range all {
			allowed := map[ApplicationStatus]bool{}
			for _, to := range legal[from] {
				allowed[to] = true
			}
			for _, to := range all {
				require.Equal(t, allowed[to], from.CanTransitionTo(to),
					"%s -> %s", from, to)
			}
		}
	})

	t.Run("self transitions are rejected", func(t *testing.T) {
		for _, s := range all {
			require.False(t, s.CanTransitionTo(s), "%s -> %s", s, s)
		}
	})

	t.Run("unknown statuses never transition", func(t *testing.T) {
		require.False(t, ApplicationStatus("pending").CanTransitionTo(StatusUnderReview))
		require.False(t, StatusSubmitted.CanTransitionTo(ApplicationStatus("pending")))
		require.False(t, ApplicationStatus("").CanTransitionTo(StatusCancelled))
	})
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	require.True(t, StatusApproved.IsTerminal())
	require.True(t, StatusRejected.IsTerminal())
	require.True(t, StatusCancelled.IsTerminal())
	require.False(t, StatusSubmitted.IsTerminal())
	require.False(t, StatusUnderReview.IsTerminal())
	require.False(t, StatusInfoRequested.IsTerminal())
}

func TestNextStatuses(t *testing.T) {
	t.Parallel()

	t.Run("non-terminal statuses include cancelled", func(t *testing.T) {
		require.ElementsMatch(t,
			[]ApplicationStatus{StatusUnderReview, StatusCancelled},
			StatusSubmitted.NextStatuses())
		require.ElementsMatch(t,
			[]ApplicationStatus{StatusApproved, StatusRejected, StatusInfoRequested, StatusCancelled},
			StatusUnderReview.NextStatuses())
		require.ElementsMatch(t,
			[]ApplicationStatus{StatusUnderReview, StatusCancelled},
			StatusInfoRequested.NextStatuses())
	})

	t.Run("terminal and unknown statuses have no next", func(t *testing.T) {
		require.Nil(t, StatusApproved.NextStatuses())
		require.Nil(t, StatusRejected.NextStatuses())
		require.Nil(t, StatusCancelled.NextStatuses())
		require.Nil(t, ApplicationStatus("pending").NextStatuses())
	})
}

func TestNewTrackingID(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 17, 10, 30, 0, 0, time.UTC)
	id := NewTrackingID(now)

	require.Len(t, id, 2+8+8)
	require.True(t, strings.HasPrefix(id, "TR20250817"), id)
	suffix := strings.TrimPrefix(id, "TR20250817")
	require.Equal(t, strings.ToUpper(suffix), suffix)
	for _, r := range suffix {
		require.Contains(t, "0123456789ABCDEF", string(r))
	}

	seen := map[string]bool{}
	for range 200 {
		next := NewTrackingID(now)
		require.False(t, seen[next], "duplicate tracking id %s", next)
		seen[next] = true
	}
}

func TestNewOrderNumber(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	n := NewOrderNumber(now)
	require.Len(t, n, 3+8+8)
	require.True(t, strings.HasPrefix(n, "ORD20251231"), n)
}
