package feed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warescan/warescan/internal/feed"
)

func TestHub_DeliversLatestOnSubscribe(t *testing.T) {
	hub := feed.NewHub()
	hub.Publish(feed.TopicScans, []byte(`["a"]`))

	ch, cancel := hub.Subscribe(feed.TopicScans)
	defer cancel()

	select {
	case snapshot := <-ch:
		assert.Equal(t, `["a"]`, string(snapshot))
	default:
		t.Fatal("expected the current snapshot on attach")
	}
}

func TestHub_FansOutToAllSubscribers(t *testing.T) {
	hub := feed.NewHub()

	ch1, cancel1 := hub.Subscribe(feed.TopicScans)
	defer cancel1()
	ch2, cancel2 := hub.Subscribe(feed.TopicScans)
	defer cancel2()

	hub.Publish(feed.TopicScans, []byte(`["b"]`))

	assert.Equal(t, `["b"]`, string(<-ch1))
	assert.Equal(t, `["b"]`, string(<-ch2))
}

func TestHub_TopicsAreIndependent(t *testing.T) {
	hub := feed.NewHub()

	scans, cancelScans := hub.Subscribe(feed.TopicScans)
	defer cancelScans()

	hub.Publish(feed.TopicUsers, []byte(`["u"]`))

	select {
	case <-scans:
		t.Fatal("scan subscriber must not see user snapshots")
	default:
	}
}

func TestHub_SlowSubscriberDoesNotBlockPublishers(t *testing.T) {
	hub := feed.NewHub()

	ch, cancel := hub.Subscribe(feed.TopicScans)
	defer cancel()

	// Overrun the subscriber buffer; publishes must not block.
	for i := 0; i < 100; i++ {
		hub.Publish(feed.TopicScans, []byte{byte(i)})
	}

	var last []byte
	for {
		select {
		case snapshot := <-ch:
			last = snapshot
			continue
		default:
		}
		break
	}
	require.NotNil(t, last)
}

func TestHub_CancelStopsDelivery(t *testing.T) {
	hub := feed.NewHub()

	ch, cancel := hub.Subscribe(feed.TopicScans)
	cancel()

	hub.Publish(feed.TopicScans, []byte(`["c"]`))

	select {
	case <-ch:
		t.Fatal("cancelled subscriber must not receive snapshots")
	default:
	}
}
