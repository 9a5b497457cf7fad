package cycle

import (
	"context"
	"log"
)

const (
	NewCycle    = "new_cycle"
	CancelCycle = "cancel_cycle"
)

type Event struct {
	Task        string
	HandlerFunc func(c *Controller, ev Event) string
}

var EventsHandlerFuncDefault = map[string]func(c *Controller, ev Event) string{
	NewCycle: func(c *Controller, ev Event) string {
		ctx, cancel := context.WithCancel(context.Background())
		handle := &cycleHandle{cancel: cancel}

		c.mu.Lock()
		if c.active != nil {
			log.Println("🛑 Canceling current cycle before starting a new one.")
			c.active.cancel()
		}
		c.active = handle
		c.mu.Unlock()

		go func() {
			rec, err := c.RunCycle(ctx, ev.Task)
			cancel()
			c.mu.Lock()
			// Release the slot only if no newer cycle replaced this one.
			if c.active == handle {
				c.active = nil
			}
			c.mu.Unlock()
			c.notify(rec, err)
		}()
		return NewCycle
	},
	CancelCycle: func(c *Controller, ev Event) string {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.active != nil {
			log.Println("🛑 Canceling active cycle.")
			c.active.cancel()
			c.active = nil
		} else {
			log.Println("⚠️ No active cycle to cancel.")
		}
		return CancelCycle
	},
}
