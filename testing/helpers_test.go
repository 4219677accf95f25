package testing

import (
	"errors"
	"testing"
)

func TestTestKey(t *testing.T) {
	key := TestKey(t)
	if len(key) != 32 {
		t.Errorf("TestKey() length = %d, want 32", len(key))
	}
}

func TestTestSealer(t *testing.T) {
	s := TestSealer(t)
	if s == nil {
		t.Fatal("TestSealer() should not return nil")
	}

	plaintext := []byte("test")
	sealed, err := s.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	opened, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if string(opened) != string(plaintext) {
		t.Errorf("Open() = %q, want %q", opened, plaintext)
	}
}

func TestRing(t *testing.T) {
	head := Ring(3)
	if head.Next.Next.Next != head {
		t.Error("Ring(3) should close after three nodes")
	}
	if head.Next.Value != 1 || head.Next.Next.Value != 2 {
		t.Errorf("Ring(3) values = %d, %d, want 1, 2", head.Next.Value, head.Next.Next.Value)
	}
}

func TestNewSensor(t *testing.T) {
	s, err := NewSensor("s-1")
	if err != nil {
		t.Fatalf("NewSensor() error: %v", err)
	}
	if s.ID() != "s-1" {
		t.Errorf("ID() = %q, want %q", s.ID(), "s-1")
	}

	if _, err := NewSensor(""); !errors.Is(err, ErrNoSensorID) {
		t.Errorf("NewSensor(\"\") error = %v, want ErrNoSensorID", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := Registry()
	for _, id := range []string{"circle", "rect"} {
		if _, ok := reg.Type(id); !ok {
			t.Errorf("Registry() missing class %q", id)
		}
	}
}

func TestShapes(t *testing.T) {
	c := &Circle{Radius: 1}
	if c.Name() != "circle" {
		t.Errorf("Name() = %q, want %q", c.Name(), "circle")
	}
	r := &Rect{W: 2, H: 3}
	if r.Area() != 6 {
		t.Errorf("Area() = %v, want 6", r.Area())
	}
}
