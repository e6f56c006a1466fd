package value

import "testing"

func TestObjectPreservesInsertionOrder(t *testing.T) {
	v := Object()
	v.Set("z", Int(1))
	v.Set("a", Int(2))
	v.Set("m", Int(3))

	got := v.Keys()
	want := []string{"z", "a", "m"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestJSONRoundTripPreservesKeyOrder(t *testing.T) {
	orig := `{"translation":[1,2,3],"rotation":[0,0,0,1],"scale":[1,1,1]}`
	v, err := FromJSON([]byte(orig))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != orig {
		t.Fatalf("round trip = %s, want %s", data, orig)
	}
}

func TestEqual(t *testing.T) {
	a := Array(Number(1), Number(2), String("x"))
	b := Array(Number(1), Number(2), String("x"))
	c := Array(Number(1), Number(2), String("y"))

	if !Equal(a, b) {
		t.Fatal("expected a == b")
	}
	if Equal(a, c) {
		t.Fatal("expected a != c")
	}
}

func TestEqualObjectOrderSignificant(t *testing.T) {
	a := Object()
	a.Set("x", Int(1))
	a.Set("y", Int(2))

	b := Object()
	b.Set("y", Int(2))
	b.Set("x", Int(1))

	if Equal(a, b) {
		t.Fatal("expected differently-ordered objects to compare unequal")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Object()
	orig.Set("list", Array(Int(1), Int(2)))
	orig.Set("nested", Object())
	clone := orig.Clone()

	origList, _ := orig.Get("list")
	cloneList, _ := clone.Get("list")
	if !Equal(origList, cloneList) {
		t.Fatal("clone diverged from original before mutation")
	}

	cloneNested, _ := clone.Get("nested")
	cloneNested.Set("k", Int(1))
	origNested, _ := orig.Get("nested")
	if origNested.Len() != 0 {
		t.Fatal("mutating the clone's nested object changed the original")
	}
}

func TestNullIsZeroValue(t *testing.T) {
	var v Value
	if !v.IsNull() {
		t.Fatal("zero Value should be null")
	}
}
