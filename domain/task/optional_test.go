package task

import (
	"encoding/json"
	"testing"
)

func TestOptionalJSON(t *testing.T) {
	type doc struct {
		N Optional[int]      `json:"n,omitzero"`
		S Optional[[]string] `json:"s,omitzero"`
	}

	tests := []struct {
		name string
		in   doc
		want string
	}{
		{"unset fields omitted", doc{}, `{}`},
		{"zero value kept", doc{N: Some(0)}, `{"n":0}`},
		{"empty list kept", doc{S: Some([]string{})}, `{"s":[]}`},
		{"both set", doc{N: Some(3), S: Some([]string{"a"})}, `{"n":3,"s":["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOptionalUnmarshal(t *testing.T) {
	var d struct {
		A Optional[int]    `json:"a"`
		B Optional[int]    `json:"b"`
		C Optional[string] `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":5,"b":null}`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if v, ok := d.A.Get(); !ok || v != 5 {
		t.Errorf("A = (%d, %v), want (5, true)", v, ok)
	}
	if d.B.IsSet() {
		t.Error("B: null should decode as unset")
	}
	if d.C.IsSet() {
		t.Error("C: absent should stay unset")
	}
}

func TestOptionalPtr(t *testing.T) {
	if p := None[int]().Ptr(); p != nil {
		t.Errorf("None().Ptr() = %v, want nil", *p)
	}
	n := 7
	o := FromPtr(&n)
	if got := o.OrElse(0); got != 7 {
		t.Errorf("FromPtr(&7).OrElse(0) = %d, want 7", got)
	}
	if FromPtr[int](nil).IsSet() {
		t.Error("FromPtr(nil) should be unset")
	}
}
