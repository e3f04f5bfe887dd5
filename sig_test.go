package lutmap

import "testing"

func TestSigLessTotalOrder(t *testing.T) {
	a := Sig{Ref: 1, Bit: 0}
	b := Sig{Ref: 1, Bit: 1}
	c := Sig{Ref: 2, Bit: 0}

	if !a.Less(b) {
		t.Errorf("want a < b on bit, got a >= b")
	}
	if b.Less(a) {
		t.Errorf("want !(b < a)")
	}
	if !b.Less(c) {
		t.Errorf("want b < c on ref, got b >= c")
	}
	if a.Less(a) {
		t.Errorf("want !(a < a)")
	}
}

func TestIsConst(t *testing.T) {
	if !ConstZero.IsConst() || !ConstOne.IsConst() {
		t.Errorf("ConstZero/ConstOne must report IsConst")
	}
	if (Sig{Ref: 1}).IsConst() {
		t.Errorf("an ordinary Sig must not report IsConst")
	}
}
