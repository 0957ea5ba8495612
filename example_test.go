package uboscope_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/gorhill/uBO-Scope/pkg/s14e"
)

func Example_serialize() {
	// Go maps are converted with their keys sorted.
	v, err := s14e.FromGo(map[string]any{
		"name": "Alice",
		"age":  30,
	})
	if err != nil {
		log.Fatal(err)
	}

	s, err := s14e.Serialize(v)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(s)
	// Output:
	// S14EDATA_1 <(')age*D'*name'+Alice
}

func Example_deserializeArray() {
	// [1, 2, 3]
	// - '>' = small array, ')' = 3 elements
	// - '*' = small positive integer, followed by one digit
	v, err := s14e.Deserialize("S14EDATA_1 >)*'*(*)")
	if err != nil {
		log.Fatal(err)
	}

	arr := v.AsArray()
	fmt.Printf("Type: %s\n", v.Kind())
	fmt.Printf("Length: %d\n", arr.Len())
	fmt.Printf("Last: %v\n", arr.At(2).AsNumber())
	// Output:
	// Type: Array
	// Length: 3
	// Last: 3
}

func Example_cycle() {
	// Shared references and cycles survive a round trip.
	tab := s14e.NewObject().Set("hostname", s14e.String("example.com"))
	tab.Set("self", tab.Value())

	s, err := s14e.Serialize(tab.Value())
	if err != nil {
		log.Fatal(err)
	}
	restored, err := s14e.Deserialize(s)
	if err != nil {
		log.Fatal(err)
	}

	obj := restored.AsObject()
	self, _ := obj.Get("self")
	fmt.Printf("Self-reference kept: %v\n", self.AsObject() == obj)
	// Output:
	// Self-reference kept: true
}

func Example_compress() {
	hosts := s14e.NewArray()
	for i := 0; i < 100; i++ {
		hosts.Append(s14e.String("www.example.com"))
	}

	plain, err := s14e.Serialize(hosts.Value())
	if err != nil {
		log.Fatal(err)
	}
	packed, err := s14e.Serialize(hosts.Value(), s14e.WithCompress())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Compressed: %v\n", s14e.IsCompressed(packed))
	fmt.Printf("Smaller: %v\n", len(packed) < len(plain))
	fmt.Printf("Prefix: %q\n", packed[:strings.Index(packed, " ")+1])
	// Output:
	// Compressed: true
	// Smaller: true
	// Prefix: "S14EDATA/lz4_1 "
}

func Example_toGo() {
	v, err := s14e.Deserialize("S14EDATA_1 >)*'*(*)")
	if err != nil {
		log.Fatal(err)
	}

	// Convert to native Go types
	arr := s14e.ToGo(v).([]any)
	fmt.Printf("Length: %d\n", len(arr))
	fmt.Printf("First element: %v\n", arr[0])
	// Output:
	// Length: 3
	// First element: 1
}

func Example_isSerialized() {
	fmt.Printf("Valid: %v\n", s14e.IsSerialized("S14EDATA_1 2"))
	fmt.Printf("Invalid: %v\n", s14e.IsSerialized(`{"json":true}`))
	// Output:
	// Valid: true
	// Invalid: false
}
