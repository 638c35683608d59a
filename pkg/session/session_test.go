package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lens/pkg/catalog"
	lenserr "github.com/matzehuels/lens/pkg/errors"
	"github.com/matzehuels/lens/pkg/layout/force"
	"github.com/matzehuels/lens/pkg/lineage"
	"github.com/matzehuels/lens/pkg/observability"
)

func mockParams(t *testing.T) Params {
	t.Helper()
	g, focal, err := catalog.Mock().Lineage(context.Background(), "asset-123")
	require.NoError(t, err)
	return Params{AssetID: "asset-123", Graph: g, Focal: focal, Width: 800, Height: 600}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	st := NewStore(ttl)
	st.now = clk.now
	return st, clk
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(time.Minute)

	sess, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)
	require.Len(t, sess.ID, 36)

	got, err := st.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Same(t, sess, got)

	info := got.Info()
	require.Equal(t, "asset-123", info.AssetID)
	require.Equal(t, catalog.MockFocal, info.Focal)
	require.Equal(t, "running", info.State)
	require.Equal(t, uint64(1), info.Generation)
	require.Equal(t, 8, info.Nodes)
}

func TestCreateRejectsBadParams(t *testing.T) {
	ctx := context.Background()
	st := NewStore(0)

	p := mockParams(t)
	p.Width = 0
	_, err := st.Create(ctx, p)
	require.True(t, lenserr.Is(err, lenserr.ErrCodeInvalidViewport), "got %v", err)

	p = mockParams(t)
	p.Graph = nil
	_, err = st.Create(ctx, p)
	require.True(t, lenserr.Is(err, lenserr.ErrCodeInvalidGraph), "got %v", err)
	require.Zero(t, st.Len())
}

func TestGetUnknown(t *testing.T) {
	_, err := NewStore(0).Get(context.Background(), "nope")
	require.True(t, lenserr.Is(err, lenserr.ErrCodeSessionNotFound))
}

func TestAdvanceSettles(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(time.Minute)
	sess, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)

	gen := sess.Frame().Generation
	var frame force.Frame
	for range 20 {
		var ok bool
		frame, ok = sess.Advance(ctx, gen, 50)
		require.True(t, ok)
		if frame.State == "settled" {
			break
		}
	}
	require.Equal(t, "settled", frame.State)
	require.Len(t, frame.Positions, 8)

	// A settled session runs no ticks but still answers.
	before := sess.Info().Ticks
	frame, ok := sess.Advance(ctx, gen, 10)
	require.True(t, ok)
	require.Equal(t, before, sess.Info().Ticks)
	require.Equal(t, "settled", frame.State)
}

func TestAdvanceClampsSteps(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(time.Minute)
	sess, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)

	_, ok := sess.Advance(ctx, 1, 0)
	require.True(t, ok)
	require.Equal(t, 1, sess.Info().Ticks)

	_, ok = sess.Advance(ctx, 1, 10*MaxStepsPerCall)
	require.True(t, ok)
	require.LessOrEqual(t, sess.Info().Ticks, 1+MaxStepsPerCall)
}

func TestReloadDropsStaleTicks(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(time.Minute)
	sess, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)

	old := sess.Frame().Generation
	_, ok := sess.Advance(ctx, old, 5)
	require.True(t, ok)

	small, err := lineage.FromParts(
		[]lineage.Node{{ID: "a", Kind: lineage.KindTable}, {ID: "b", Kind: lineage.KindView}},
		[]lineage.Edge{{Source: "a", Target: "b"}},
	)
	require.NoError(t, err)
	gen := sess.Reload("asset-999", small, "a")
	require.Equal(t, old+1, gen)

	frame, ok := sess.Advance(ctx, old, 5)
	require.False(t, ok, "tick from previous generation must be dropped")
	require.Equal(t, gen, frame.Generation)
	require.Zero(t, sess.Info().Ticks)

	frame, ok = sess.Advance(ctx, gen, 5)
	require.True(t, ok)
	require.Len(t, frame.Positions, 2)
	require.Equal(t, "asset-999", sess.AssetID())

	l := sess.Layout()
	require.Equal(t, "a", l.Focal)
	require.Len(t, l.Links, 1)
}

func TestDrag(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(time.Minute)
	sess, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)
	gen := sess.Frame().Generation

	p := force.Point{X: 100, Y: 100}
	require.NoError(t, sess.BeginDrag("dash_exec", p))
	require.NoError(t, sess.UpdateDrag("dash_exec", force.Point{X: 120, Y: 90}))

	frame, ok := sess.Advance(ctx, gen, 5)
	require.True(t, ok)
	require.Equal(t, force.Point{X: 120, Y: 90}, frame.Positions["dash_exec"])
	require.Equal(t, []string{"dash_exec"}, frame.Pinned)

	require.NoError(t, sess.EndDrag("dash_exec"))
	require.Empty(t, sess.Frame().Pinned)

	err = sess.BeginDrag("ghost", p)
	require.True(t, lenserr.Is(err, lenserr.ErrCodeNodeNotFound), "got %v", err)

	err = sess.UpdateDrag("stg_cust", p)
	require.True(t, lenserr.Is(err, lenserr.ErrCodeInvalidInput), "got %v", err)
}

func TestResize(t *testing.T) {
	st, _ := newTestStore(time.Minute)
	sess, err := st.Create(context.Background(), mockParams(t))
	require.NoError(t, err)

	require.NoError(t, sess.Resize(1024, 768))
	f := sess.Frame()
	require.Equal(t, 1024.0, f.Width)
	require.Equal(t, 768.0, f.Height)

	err = sess.Resize(-1, 10)
	require.True(t, lenserr.Is(err, lenserr.ErrCodeInvalidViewport))
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	st, clk := newTestStore(time.Minute)

	a, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)
	clk.advance(40 * time.Second)
	b, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)

	clk.advance(30 * time.Second)
	require.True(t, a.Expired(clk.now()))
	require.False(t, b.Expired(clk.now()))

	_, err = st.Get(ctx, a.ID)
	require.True(t, lenserr.Is(err, lenserr.ErrCodeSessionNotFound))
	require.Equal(t, 1, st.Len())

	// Activity extends the TTL.
	require.NoError(t, b.Resize(900, 700))
	clk.advance(45 * time.Second)
	require.Zero(t, st.Cleanup(ctx))

	clk.advance(time.Minute)
	require.Equal(t, 1, st.Cleanup(ctx))
	require.Zero(t, st.Len())
}

func TestDeleteAndList(t *testing.T) {
	ctx := context.Background()
	st, clk := newTestStore(time.Minute)

	a, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)
	clk.advance(time.Second)
	b, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)

	infos := st.List()
	require.Len(t, infos, 2)
	require.Equal(t, a.ID, infos[0].ID)
	require.Equal(t, b.ID, infos[1].ID)

	require.NoError(t, st.Delete(ctx, a.ID))
	require.NoError(t, st.Delete(ctx, a.ID))
	require.Equal(t, 1, st.Len())
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	st := NewStore(time.Minute)
	sess, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)
	gen := sess.Frame().Generation

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range 25 {
				sess.Advance(ctx, gen, 2)
				_ = sess.BeginDrag("stg_orders", force.Point{X: float64(100 + i), Y: 100})
				_ = sess.EndDrag("stg_orders")
				_ = sess.Layout()
			}
		}(i)
	}
	wg.Wait()
	require.Positive(t, sess.Info().Ticks)
}

type countingHooks struct {
	observability.NoopSessionHooks
	mu     sync.Mutex
	opened int
	closed map[string]int
	ticks  int
}

func (h *countingHooks) OnSessionOpen(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened++
}

func (h *countingHooks) OnSessionClose(_ context.Context, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed[reason]++
}

func (h *countingHooks) OnTicks(_ context.Context, n int, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticks += n
}

func TestSessionHooks(t *testing.T) {
	h := &countingHooks{closed: map[string]int{}}
	observability.SetSessionHooks(h)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	st, clk := newTestStore(time.Minute)
	a, err := st.Create(ctx, mockParams(t))
	require.NoError(t, err)
	_, err = st.Create(ctx, mockParams(t))
	require.NoError(t, err)

	a.Advance(ctx, 1, 7)
	require.NoError(t, st.Delete(ctx, a.ID))
	clk.advance(2 * time.Minute)
	st.Cleanup(ctx)

	require.Equal(t, 2, h.opened)
	require.Equal(t, 7, h.ticks)
	require.Equal(t, map[string]int{ReasonDeleted: 1, ReasonExpired: 1}, h.closed)
}
