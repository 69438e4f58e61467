package realtime

import (
	"testing"

	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	return NewHub(zap.NewNop().Sugar())
}

func TestPublishRespectsOwnership(t *testing.T) {
	h := newTestHub()
	alice := h.Subscribe("alice")
	bob := h.Subscribe("bob")
	defer alice.Close()
	defer bob.Close()

	n := h.Publish(models.ChangeEvent{Table: models.TableOrders, Type: models.EventInsert, UserID: "alice"})
	require.Equal(t, 1, n)

	ev := <-alice.C()
	require.Equal(t, models.TableOrders, ev.Table)
	require.False(t, ev.At.IsZero())
	require.Empty(t, bob.C())

	n = h.Publish(models.ChangeEvent{Table: models.TableProducts, Type: models.EventUpdate})
	require.Equal(t, 2, n)
	require.Len(t, alice.C(), 1)
	require.Len(t, bob.C(), 1)
}

func TestSubscribeTableFilter(t *testing.T) {
	h := newTestHub()
	s := h.Subscribe("alice", models.TableCart)
	defer s.Close()

	require.Zero(t, h.Publish(models.ChangeEvent{Table: models.TableOrders, UserID: "alice"}))
	require.Equal(t, 1, h.Publish(models.ChangeEvent{Table: models.TableCart, UserID: "alice"}))
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	h := newTestHub()
	h.buffer = 2
	s := h.Subscribe("alice")
	defer s.Close()

	for i := 0; i < 5; i++ {
		h.Emit(models.TableCart, models.EventUpdate, "alice", i)
	}
	require.Len(t, s.C(), 2)
	first := <-s.C()
	require.Equal(t, 0, first.Record)
}

func TestCloseIsIdempotent(t *testing.T) {
	h := newTestHub()
	s := h.Subscribe("alice")
	require.Equal(t, 1, h.Subscribers())

	s.Close()
	s.Close()
	require.Zero(t, h.Subscribers())

	_, ok := <-s.C()
	require.False(t, ok)
	require.Zero(t, h.Publish(models.ChangeEvent{Table: models.TableCart}))
}
