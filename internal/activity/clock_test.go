// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_FiresInDeadlineOrder(t *testing.T) {
	c := NewFakeClock(epoch)
	var order []string
	c.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	c.AfterFunc(time.Second, func() { order = append(order, "a") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, c.Pending())

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, epoch.Add(3*time.Second), c.Now())
}

func TestFakeClock_CallbackSeesDeadlineTime(t *testing.T) {
	c := NewFakeClock(epoch)
	var seen time.Time
	c.AfterFunc(time.Second, func() { seen = c.Now() })

	c.Advance(time.Hour)
	assert.Equal(t, epoch.Add(time.Second), seen)
	assert.Equal(t, epoch.Add(time.Hour), c.Now())
}

func TestFakeClock_NestedScheduling(t *testing.T) {
	c := NewFakeClock(epoch)
	fired := 0
	c.AfterFunc(time.Second, func() {
		fired++
		c.AfterFunc(time.Second, func() { fired++ })
	})

	c.Advance(2 * time.Second)
	assert.Equal(t, 2, fired)
}

func TestFakeClock_Stop(t *testing.T) {
	c := NewFakeClock(epoch)
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	c.Advance(time.Minute)
	assert.False(t, fired)

	_, ok := c.NextDeadline()
	assert.False(t, ok)
}

func TestRealClock_AfterFunc(t *testing.T) {
	done := make(chan struct{})
	RealClock().AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real clock timer did not fire")
	}
}
