package benchmarks

import (
	"bytes"
	"context"
	"testing"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/binary"
	"github.com/zoobzio/pantry/bson"
	"github.com/zoobzio/pantry/json"
	"github.com/zoobzio/pantry/msgpack"
	"github.com/zoobzio/pantry/seal"
	pantrytest "github.com/zoobzio/pantry/testing"
	"github.com/zoobzio/pantry/text"
	"github.com/zoobzio/pantry/xml"
	"github.com/zoobzio/pantry/yaml"
)

func benchFormats(b *testing.B) []pantry.Format {
	return []pantry.Format{
		json.New(),
		xml.New(),
		yaml.New(),
		binary.New(),
		bson.New(),
		text.New(),
		msgpack.New(),
		seal.Wrap(binary.New(), pantrytest.TestSealer(b)),
	}
}

func BenchmarkSave_Object(b *testing.B) {
	v := pantrytest.SampleObject()
	for _, f := range benchFormats(b) {
		b.Run(f.ContentType(), func(b *testing.B) {
			var buf bytes.Buffer
			b.ReportAllocs()
			for b.Loop() {
				buf.Reset()
				oa := pantry.Output(f, &buf)
				_ = oa.Save(context.Background(), &v)
				_ = oa.Close()
			}
		})
	}
}

func BenchmarkLoad_Object(b *testing.B) {
	v := pantrytest.SampleObject()
	for _, f := range benchFormats(b) {
		b.Run(f.ContentType(), func(b *testing.B) {
			data := pantrytest.Encode(b, f, nil, &v)
			b.ReportAllocs()
			for b.Loop() {
				var out pantrytest.Object
				_ = pantrytest.Load(f, data, nil, &out)
			}
		})
	}
}

func BenchmarkSave_SharedGraph(b *testing.B) {
	nodes := make([]*pantrytest.Node, 1000)
	head := pantrytest.Ring(len(nodes))
	for i, n := 0, head; i < len(nodes); i, n = i+1, n.Next {
		nodes[i] = n
	}

	for _, f := range []pantry.Format{json.New(), binary.New()} {
		b.Run(f.ContentType(), func(b *testing.B) {
			var buf bytes.Buffer
			b.ReportAllocs()
			for b.Loop() {
				buf.Reset()
				oa := pantry.Output(f, &buf)
				_ = oa.Save(context.Background(), &nodes)
				_ = oa.Close()
			}
		})
	}
}

func BenchmarkLoad_Polymorphic(b *testing.B) {
	reg := pantrytest.Registry()
	shapes := make([]pantrytest.Shape, 0, 200)
	for i := 0; i < 100; i++ {
		shapes = append(shapes, &pantrytest.Circle{Radius: float64(i)}, &pantrytest.Rect{W: 1, H: float64(i)})
	}
	v := pantrytest.Drawing{Title: "bench", Shapes: shapes}
	opts := []pantry.Option{pantry.WithRegistry(reg)}

	for _, f := range []pantry.Format{json.New(), msgpack.New()} {
		b.Run(f.ContentType(), func(b *testing.B) {
			data := pantrytest.Encode(b, f, opts, &v)
			b.ReportAllocs()
			for b.Loop() {
				var out pantrytest.Drawing
				_ = pantrytest.Load(f, data, opts, &out)
			}
		})
	}
}

func BenchmarkPrepare(b *testing.B) {
	for b.Loop() {
		pantry.ResetPlans()
		pantry.Prepare[pantrytest.Scalars]()
	}
}
