package storage

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLockManager(t *testing.T) {
	lm := NewLockManager()

	t.Run("WriteBlocksReads", func(t *testing.T) {
		writeStarted := make(chan struct{})
		writeDone := make(chan struct{})
		readStarted := make(chan struct{})

		go func() {
			_ = lm.Execute(WriteOperation, func() error {
				close(writeStarted)
				time.Sleep(50 * time.Millisecond)
				close(writeDone)
				return nil
			})
		}()

		<-writeStarted

		go func() {
			_ = lm.Execute(ReadOperation, func() error {
				close(readStarted)
				return nil
			})
		}()

		select {
		case <-readStarted:
			t.Error("read started while write was in progress")
		case <-time.After(25 * time.Millisecond):
		}

		<-writeDone

		select {
		case <-readStarted:
		case <-time.After(time.Second):
			t.Error("read did not start after write completed")
		}
	})

	t.Run("ConcurrentTreeWrites", func(t *testing.T) {
		root := NewRoot()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			name := string(rune('a' + i))
			go func() {
				defer wg.Done()
				_ = lm.Execute(WriteOperation, func() error {
					_, err := root.CreateChild(name)
					return err
				})
			}()
		}
		wg.Wait()

		if got := root.ChildCount(); got != 20 {
			t.Errorf("expected 20 children, got %d", got)
		}
	})

	t.Run("ExecuteWithResult", func(t *testing.T) {
		result, err := ExecuteWithResult(lm, ReadOperation, func() (string, error) {
			return "test-value", nil
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != "test-value" {
			t.Errorf("expected 'test-value', got %v", result)
		}

		boom := errors.New("boom")
		_, err = ExecuteWithResult(lm, WriteOperation, func() (int, error) {
			return 0, boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected callback error, got %v", err)
		}
	})
}
