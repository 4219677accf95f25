package testing

import (
	"errors"
	"math"

	"github.com/zoobzio/pantry"
)

// Point is a plain struct archived by reflection.
type Point struct {
	X int `pantry:"x"`
	Y int `pantry:"y"`
}

// Object is a struct covering the common member kinds.
type Object struct {
	A int        `pantry:"a"`
	B float32    `pantry:"b"`
	C string     `pantry:"c"`
	D Point      `pantry:"d"`
	E []int      `pantry:"e"`
	F [][]string `pantry:"f"`
}

// SampleObject returns a populated Object.
func SampleObject() Object {
	return Object{
		A: 10,
		B: 12.5,
		C: "The quick brown fox",
		D: Point{X: 1, Y: 2},
		E: []int{3, 1, 4, 1, 5},
		F: [][]string{{"Foo", "Bar"}, {"Fizz", "Buzz", "FizzBuzz"}},
	}
}

// Color is a named integer enum.
type Color int

// Colors.
const (
	Red Color = iota
	Green
	Blue
)

// Level is a named unsigned enum.
type Level uint8

// Scalars holds one member of every scalar kind.
type Scalars struct {
	Bool    bool
	Int     int
	Int8    int8
	Int16   int16
	Int32   int32
	Int64   int64
	Uint    uint
	Uint8   uint8
	Uint16  uint16
	Uint32  uint32
	Uint64  uint64
	Float32 float32
	Float64 float64
	C64     complex64
	C128    complex128
	String  string
	Bytes   []byte
	Color   Color
	Level   Level
}

// SampleScalars returns Scalars holding boundary values.
func SampleScalars() Scalars {
	return Scalars{
		Bool:    true,
		Int:     -42,
		Int8:    math.MinInt8,
		Int16:   math.MaxInt16,
		Int32:   math.MinInt32,
		Int64:   math.MaxInt64,
		Uint:    42,
		Uint8:   math.MaxUint8,
		Uint16:  math.MaxUint16,
		Uint32:  math.MaxUint32,
		Uint64:  math.MaxUint64,
		Float32: -1.5e-7,
		Float64: math.Pi,
		C64:     complex(1.5, -2),
		C128:    complex(math.E, 1e300),
		String:  "tab\tquote\" amp& lt< slash/ é ✓",
		Bytes:   []byte{0, 1, 2, 3, 255},
		Color:   Blue,
		Level:   7,
	}
}

// Containers holds aggregate members.
type Containers struct {
	Array  [3]int
	Grid   [2][2]float64
	Slice  []string
	Nested [][]int
	Map    map[string]int
	ByID   map[int]Point
	Empty  []int
}

// SampleContainers returns populated Containers.
func SampleContainers() Containers {
	return Containers{
		Array:  [3]int{1, 2, 3},
		Grid:   [2][2]float64{{1, 2}, {3, 4}},
		Slice:  []string{"a", "", "c"},
		Nested: [][]int{{1}, {}, {2, 3}},
		Map:    map[string]int{"one": 1, "two": 2, "three": 3},
		ByID:   map[int]Point{7: {1, 2}, -1: {3, 4}},
		Empty:  []int{},
	}
}

// Shape is the interface used by the polymorphism fixtures.
type Shape interface {
	Area() float64
	Name() string
}

// Circle is a Shape.
type Circle struct {
	Radius float64 `pantry:"radius"`
}

func (c *Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }
func (c *Circle) Name() string  { return "circle" }

// Rect is a Shape.
type Rect struct {
	W float64 `pantry:"w"`
	H float64 `pantry:"h"`
}

func (r *Rect) Area() float64 { return r.W * r.H }
func (r *Rect) Name() string  { return "rect" }

// Drawing holds shapes behind an interface.
type Drawing struct {
	Title  string  `pantry:"title"`
	Shapes []Shape `pantry:"shapes"`
	Focus  Shape   `pantry:"focus"`
}

// Node is a linked list cell; lists may be cyclic.
type Node struct {
	Value int   `pantry:"value"`
	Next  *Node `pantry:"next"`
}

// Ring returns a cyclic list of n nodes.
func Ring(n int) *Node {
	head := &Node{Value: 0}
	cur := head
	for i := 1; i < n; i++ {
		cur.Next = &Node{Value: i}
		cur = cur.Next
	}
	cur.Next = head
	return head
}

// Account implements split hooks and a class version. Version 1 had no currency.
type Account struct {
	ID       string
	Balance  int64
	Currency string
}

// AccountVersion is the current class version of Account.
const AccountVersion = 2

func (a *Account) ArchiveVersion() uint32 { return AccountVersion }

func (a *Account) SaveArchive(oa *pantry.OArchive, _ uint32) error {
	return oa.Process(
		pantry.Named("id", &a.ID),
		pantry.Named("balance", &a.Balance),
		pantry.Named("currency", &a.Currency),
	)
}

func (a *Account) LoadArchive(ia *pantry.IArchive, version uint32) error {
	if err := ia.Process(pantry.Named("id", &a.ID), pantry.Named("balance", &a.Balance)); err != nil {
		return err
	}
	if version < 2 {
		a.Currency = "USD"
		return nil
	}
	return ia.Process(pantry.Named("currency", &a.Currency))
}

// Counter implements the bidirectional hook.
type Counter struct {
	Name string
	Hits uint64
}

func (c *Counter) Serialize(ar pantry.Archive, _ uint32) error {
	return ar.Process(pantry.Named("name", &c.Name), pantry.Named("hits", &c.Hits))
}

// Sensor can only be built through NewSensor: its id is fixed at construction.
type Sensor struct {
	id      string
	Reading float64
}

// ErrNoSensorID is returned by the Sensor constructor for an empty id.
var ErrNoSensorID = errors.New("sensor id required")

// NewSensor returns a Sensor with the given id.
func NewSensor(id string) (*Sensor, error) {
	if id == "" {
		return nil, ErrNoSensorID
	}
	return &Sensor{id: id}, nil
}

// ID returns the id given at construction.
func (s *Sensor) ID() string { return s.id }

func (s *Sensor) SaveConstruct(oa *pantry.OArchive) error {
	return oa.Process(pantry.Named("id", s.id))
}

func (s *Sensor) SaveArchive(oa *pantry.OArchive, _ uint32) error {
	return oa.Process(pantry.Named("reading", &s.Reading))
}

func (s *Sensor) LoadArchive(ia *pantry.IArchive, _ uint32) error {
	return ia.Process(pantry.Named("reading", &s.Reading))
}

// LoadSensor is the registered constructor of Sensor.
func LoadSensor(ia *pantry.IArchive) (*Sensor, error) {
	var id string
	if err := ia.Process(pantry.Named("id", &id)); err != nil {
		return nil, err
	}
	return NewSensor(id)
}

// Registry returns a registry with every fixture registered.
func Registry() *pantry.Registry {
	reg := pantry.NewRegistry()
	pantry.MustRegister[*Circle](reg, "circle")
	pantry.MustRegister[*Rect](reg, "rect")
	pantry.RegisterConstructor(reg, LoadSensor)
	return reg
}
