package goBlog

import "context"

type watcher struct {
	ch chan State
}

// Watch returns a channel that receives a State snapshot after every change,
// starting with the current one. Delivery is latest-wins: a watcher that falls
// behind sees the newest state, never a backlog. The channel closes when ctx
// ends or the Client is closed.
func (c *Client) Watch(ctx context.Context) <-chan State {
	w := &watcher{ch: make(chan State, 1)}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(w.ch)
		return w.ch
	}
	c.watchers[w] = struct{}{}
	w.ch <- c.state.snapshot()
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
		}
		c.mu.Lock()
		if _, ok := c.watchers[w]; ok {
			delete(c.watchers, w)
			close(w.ch)
		}
		c.mu.Unlock()
	}()
	return w.ch
}

// publishLocked pushes the current snapshot to every watcher. Callers hold c.mu,
// which also orders snapshots so watchers never see them out of sequence.
func (c *Client) publishLocked() {
	if len(c.watchers) == 0 {
		return
	}
	snap := c.state.snapshot()
	for w := range c.watchers {
		select {
		case w.ch <- snap:
		default:
			// replace the stale pending snapshot
			select {
			case <-w.ch:
			default:
			}
			select {
			case w.ch <- snap:
			default:
			}
		}
	}
}

func (c *Client) closeWatchersLocked() {
	for w := range c.watchers {
		delete(c.watchers, w)
		close(w.ch)
	}
}
