package json_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/json"
	pantrytest "github.com/zoobzio/pantry/testing"
)

func TestContentType(t *testing.T) {
	f := json.New()
	if f.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q, want %q", f.ContentType(), "application/json")
	}
}

func TestWriter_Layout(t *testing.T) {
	in := pantrytest.SampleObject()
	got := string(pantrytest.Encode(t, json.New(), nil, &in))

	want := `{
    "value0": {
        "version": 0,
        "a": 10,
        "b": 12.5,
        "c": "The quick brown fox",
        "d": {
            "version": 0,
            "x": 1,
            "y": 2
        },
        "e": [
            3,
            1,
            4,
            1,
            5
        ],
        "f": [
            [
                "Foo",
                "Bar"
            ],
            [
                "Fizz",
                "Buzz",
                "FizzBuzz"
            ]
        ]
    }
}
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_Indent(t *testing.T) {
	p := pantrytest.Point{X: 1, Y: 2}
	got := string(pantrytest.Encode(t, json.New(json.WithIndent(2)), nil, pantry.Named("p", &p)))

	want := "{\n  \"p\": {\n    \"version\": 0,\n    \"x\": 1,\n    \"y\": 2\n  }\n}\n"
	if got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestWriter_EmptyDocument(t *testing.T) {
	got := string(pantrytest.Encode(t, json.New(), nil))
	if got != "{}\n" {
		t.Errorf("document = %q, want %q", got, "{}\n")
	}
}

func TestWriter_EmptyContainers(t *testing.T) {
	list := []int{}
	m := map[string]int{}
	got := string(pantrytest.Encode(t, json.New(), nil, &list, &m))

	want := "{\n    \"value0\": [],\n    \"value1\": []\n}\n"
	if got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestWriter_Escaping(t *testing.T) {
	s := "\"\\/\b\f\n\r\t\x01é"
	got := string(pantrytest.Encode(t, json.New(), nil, &s))

	want := "{\n    \"value0\": \"\\\"\\\\\\/\\b\\f\\n\\r\\t\\u0001é\"\n}\n"
	if got != want {
		t.Errorf("document = %q, want %q", got, want)
	}

	var out string
	pantrytest.Decode(t, json.New(), []byte(got), nil, &out)
	if out != s {
		t.Errorf("loaded = %q, want %q", out, s)
	}
}

func TestWriter_Specials(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"bytes", &[]byte{1, 2, 3, 255}, `"AQID/w=="`},
		{"bool", new(bool), `false`},
		{"negative", &[]int64{-7}, "[\n        -7\n    ]"},
		{"complex", &[]complex128{complex(1, -2)}, "[\n        [\n            1,\n            -2\n        ]\n    ]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(pantrytest.Encode(t, json.New(), nil, tt.in))
			want := "{\n    \"value0\": " + tt.want + "\n}\n"
			if got != want {
				t.Errorf("document = %q, want %q", got, want)
			}
		})
	}
}

func TestWriter_NonFinite(t *testing.T) {
	in := []float64{posInf(), -posInf()}
	got := string(pantrytest.Encode(t, json.New(), nil, &in))
	if !strings.Contains(got, `"inf"`) || !strings.Contains(got, `"-inf"`) {
		t.Errorf("document = %q, want quoted inf and -inf", got)
	}
}

func TestWriter_InvalidUTF8(t *testing.T) {
	s := "bad\xff"
	_, err := pantry.Marshal(context.Background(), json.New(), &s)
	if !errors.Is(err, pantry.ErrUnsupportedType) {
		t.Errorf("Marshal() error = %v, want ErrUnsupportedType", err)
	}
}

func TestReader_OlderVersion(t *testing.T) {
	doc := `{
    "value0": {
        "version": 1,
        "id": "acc-7",
        "balance": 120
    }
}`
	var a pantrytest.Account
	pantrytest.Decode(t, json.New(), []byte(doc), nil, &a)

	want := pantrytest.Account{ID: "acc-7", Balance: 120, Currency: "USD"}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("Account mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_NewerVersion(t *testing.T) {
	doc := `{"value0": {"version": 3, "id": "x", "balance": 0, "currency": "EUR"}}`
	var a pantrytest.Account
	err := pantrytest.Load(json.New(), []byte(doc), nil, &a)
	if !errors.Is(err, pantry.ErrUnsupportedVersion) {
		t.Errorf("Load() error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestReader_MemberOrder(t *testing.T) {
	doc := `{"value0": {"y": 2, "x": 1, "version": 0}}`
	var p pantrytest.Point
	pantrytest.Decode(t, json.New(), []byte(doc), nil, &p)
	if p != (pantrytest.Point{X: 1, Y: 2}) {
		t.Errorf("Point = %+v, want {X:1 Y:2}", p)
	}
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"truncated", `{"value0": `, pantry.ErrMalformed},
		{"root array", `[1, 2]`, pantry.ErrMalformed},
		{"trailing data", `{"value0": 1} {}`, pantry.ErrMalformed},
		{"wrong kind", `{"value0": "one"}`, pantry.ErrMalformed},
		{"object for int", `{"value0": {}}`, pantry.ErrMalformed},
		{"fraction for int", `{"value0": 1.5}`, pantry.ErrMalformed},
		{"overflow", `{"value0": 300}`, pantry.ErrOverflow},
		{"missing", `{"other": 1}`, pantry.ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v int8
			err := pantrytest.Load(json.New(), []byte(tt.doc), nil, &v)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReader_FormatError(t *testing.T) {
	err := pantrytest.Load(json.New(), []byte(`{"value0": [1,,]}`), nil, new([]int))
	var fe *pantry.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Load() error = %v, want a FormatError", err)
	}
	if fe.ContentType != json.ContentType {
		t.Errorf("ContentType = %q, want %q", fe.ContentType, json.ContentType)
	}
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}
