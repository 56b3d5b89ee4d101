package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ggshop/orders-service/internal/order"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.json")
	s, err := New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, path
}

func sampleOrder(id string) order.Order {
	return order.Order{
		OrderID:     id,
		CreatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Status:      order.StatusNew,
		ProductID:   "p1",
		ProductName: "Jacket",
		UnitPrice:   500,
		Qty:         2,
		Area:        order.AreaDhaka,
		Shipping:    70,
		Total:       1070,
		Customer:    order.Customer{Name: "A", Phone: "017", Address: "X"},
	}
}

func TestNewInitializesEmptyCollection(t *testing.T) {
	s, path := newTestStore(t)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("orders file not created: %v", err)
	}

	c, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Orders == nil || len(c.Orders) != 0 {
		t.Fatalf("want empty non-nil collection, got %#v", c.Orders)
	}
}

func TestRoundTrip(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	want := []order.Order{sampleOrder("GG-AAAAAAAAAA"), sampleOrder("GG-BBBBBBBBBB")}
	err := s.Update(ctx, func(c *order.Collection) error {
		c.Orders = want
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	// Reopen from disk to prove durability, not just the cached copy.
	s2, err := New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Orders) != len(want) {
		t.Fatalf("got %d orders, want %d", len(got.Orders), len(want))
	}
	for i := range want {
		if got.Orders[i] != want[i] {
			t.Errorf("order %d = %#v, want %#v", i, got.Orders[i], want[i])
		}
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s, path := newTestStore(t)

	err := s.Update(context.Background(), func(c *order.Collection) error {
		c.Orders = append(c.Orders, sampleOrder("GG-AAAAAAAAAA"))
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestUpdateAbortsWithoutSaving(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	if err := s.Update(ctx, func(c *order.Collection) error {
		c.Orders = append(c.Orders, sampleOrder("GG-AAAAAAAAAA"))
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	before, _ := os.ReadFile(path)

	wantErr := os.ErrPermission
	if err := s.Update(ctx, func(c *order.Collection) error {
		c.Orders = nil
		return wantErr
	}); err != wantErr {
		t.Fatalf("update error = %v, want %v", err, wantErr)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("aborted update still changed the file")
	}
}

func TestCorruptFileIsQuarantined(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Reads recover to an empty collection without failing.
	c, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Orders) != 0 {
		t.Fatalf("want empty collection, got %d orders", len(c.Orders))
	}

	// The next mutation sets the corrupt file aside and starts fresh.
	if err := s.Update(ctx, func(c *order.Collection) error {
		c.Orders = append(c.Orders, sampleOrder("GG-AAAAAAAAAA"))
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	backups, err := filepath.Glob(path + ".corrupt-*")
	if err != nil || len(backups) != 1 {
		t.Fatalf("want one corrupt backup, got %v (err %v)", backups, err)
	}
	raw, _ := os.ReadFile(backups[0])
	if string(raw) != "{not json" {
		t.Errorf("backup content = %q", raw)
	}

	c, _ = s.Load(ctx)
	if len(c.Orders) != 1 {
		t.Fatalf("want 1 order after recovery, got %d", len(c.Orders))
	}
}

func TestWrongShapeIsCorrupt(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	if err := os.WriteFile(path, []byte(`{"something":"else"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Orders) != 0 {
		t.Fatalf("want empty collection, got %d orders", len(c.Orders))
	}
}

func TestConcurrentUpdates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Update(ctx, func(c *order.Collection) error {
				c.Orders = append([]order.Order{sampleOrder(order.NewID())}, c.Orders...)
				return nil
			})
			if err != nil {
				t.Errorf("update %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	c, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Orders) != n {
		t.Fatalf("got %d orders, want %d (lost update)", len(c.Orders), n)
	}
}

func TestStats(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	if err := s.Update(ctx, func(c *order.Collection) error {
		c.Orders = append(c.Orders, sampleOrder("GG-AAAAAAAAAA"))
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Path != path {
		t.Errorf("path = %q, want %q", stats.Path, path)
	}
	if stats.Orders != 1 {
		t.Errorf("orders = %d, want 1", stats.Orders)
	}
	if stats.SizeBytes <= 0 {
		t.Errorf("size = %d, want > 0", stats.SizeBytes)
	}
}
