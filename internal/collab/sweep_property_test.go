package collab

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collab-service/internal/model"
)

// For any set of cursor ages, one sweep keeps exactly the entries whose age is
// within the cursor window and evicts the rest.
func TestProperty_SweepKeepsExactlyFreshCursors(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Sweep partitions cursors by age against the window", prop.ForAll(
		func(agesSeconds []int) bool {
			ft := newFakeTransport()
			clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
			cfg := testConfig()
			cfg.Clock = clk.Now
			s := NewSession(ft, model.PresenceRecord{ID: uuid.New()}, cfg, zap.NewNop())
			require.NoError(t, s.Start(context.Background(), "token"))
			defer s.Dispose()
			room := model.ProjectRoom(uuid.New())
			s.JoinPrimary(room)

			now := clk.Now()
			wantKept := 0
			for _, age := range agesSeconds {
				clk.now = now.Add(-time.Duration(age) * time.Second)
				ft.deliver(model.CursorEvent{Room: room, Signal: model.CursorSignal{
					UserID: uuid.New(), X: float64(age), Y: 0,
				}})
				if time.Duration(age)*time.Second <= cfg.CursorTTL {
					wantKept++
				}
			}
			clk.now = now

			pruned := s.Sweep()

			kept := s.Cursors()
			if len(kept) != wantKept {
				return false
			}
			if pruned != len(agesSeconds)-wantKept {
				return false
			}
			for _, sig := range kept {
				if now.Sub(sig.ReceivedAt) > cfg.CursorTTL {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 120)),
	))

	properties.TestingRun(t)
}
