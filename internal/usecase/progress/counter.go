package progress

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/internal/domain/repositories"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/cache"
)

// PendingCounter is an observable count of tasks still awaiting a
// recommendation. The Redis subscription exists only while someone is
// watching: the first subscriber starts it, the last one tears it down.
type PendingCounter struct {
	bus    *cache.RedisClient
	tasks  repositories.TaskRepository
	logger *zap.Logger

	mu          sync.Mutex
	subscribers map[int]chan int
	nextID      int
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewPendingCounter creates the counter. It holds no subscription until the
// first Subscribe call.
func NewPendingCounter(bus *cache.RedisClient, tasks repositories.TaskRepository, logger *zap.Logger) *PendingCounter {
	return &PendingCounter{
		bus:         bus,
		tasks:       tasks,
		logger:      logger,
		subscribers: make(map[int]chan int),
	}
}

// Subscribe registers an observer. The returned channel receives the
// current pending count immediately and again after every task event. The
// returned function unsubscribes; calling it twice is safe.
func (c *PendingCounter) Subscribe(ctx context.Context) (<-chan int, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan int, 1)
	c.subscribers[id] = ch

	if len(c.subscribers) == 1 {
		listenCtx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.done = make(chan struct{})
		go c.listen(listenCtx, c.done)
	}

	ch <- c.count(ctx)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() { c.remove(id) })
	}
	return ch, unsubscribe, nil
}

func (c *PendingCounter) remove(id int) {
	c.mu.Lock()
	ch, ok := c.subscribers[id]
	if ok {
		delete(c.subscribers, id)
		close(ch)
	}
	last := ok && len(c.subscribers) == 0
	cancel := c.cancel
	done := c.done
	if last {
		c.cancel = nil
		c.done = nil
	}
	c.mu.Unlock()

	if last {
		cancel()
		<-done
	}
}

// listen recounts from storage on every bus event and broadcasts. The event
// is a wake-up signal only; the database stays the source of truth.
func (c *PendingCounter) listen(ctx context.Context, done chan struct{}) {
	defer close(done)

	pubsub := c.bus.Subscribe(ctx, cache.TaskEventsChannel)
	defer pubsub.Close()

	events := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			_ = msg
			c.broadcast(c.count(ctx))
		}
	}
}

func (c *PendingCounter) count(ctx context.Context) int {
	pending, err := c.tasks.ListPending(ctx, nil)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("pending count failed", zap.Error(err))
		}
		return 0
	}
	return len(pending)
}

func (c *PendingCounter) broadcast(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subscribers {
		// Drop the stale value if the observer has not drained it yet
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- count:
		default:
		}
	}
}
