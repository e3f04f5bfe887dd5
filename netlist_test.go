package lutmap

import "testing"

func TestCellTypeIsPrimitive(t *testing.T) {
	for _, typ := range []CellType{CellAnd, CellOr, CellXor, CellNand, CellNor, CellXnor, CellNot, CellAndNot, CellOrNot, CellMux} {
		if !typ.IsPrimitive() {
			t.Errorf("%v must be primitive", typ)
		}
	}
	for _, typ := range []CellType{CellBoundary, CellLUT6, CellLUT6D} {
		if typ.IsPrimitive() {
			t.Errorf("%v must not be primitive", typ)
		}
	}
}

func TestCellTypeIsTransparent(t *testing.T) {
	if !CellNot.IsTransparent() {
		t.Errorf("CellNot must be transparent")
	}
	for _, typ := range []CellType{CellAnd, CellOr, CellXor, CellMux, CellBoundary} {
		if typ.IsTransparent() {
			t.Errorf("%v must not be transparent", typ)
		}
	}
}

func TestEvalGateTable(t *testing.T) {
	cases := []struct {
		typ  CellType
		ins  []bool
		want bool
	}{
		{CellAnd, []bool{true, true}, true},
		{CellAnd, []bool{true, false}, false},
		{CellOr, []bool{false, false}, false},
		{CellOr, []bool{false, true}, true},
		{CellXor, []bool{true, true}, false},
		{CellXor, []bool{true, false}, true},
		{CellNand, []bool{true, true}, false},
		{CellNor, []bool{false, false}, true},
		{CellXnor, []bool{true, true}, true},
		{CellNot, []bool{true}, false},
		{CellAndNot, []bool{true, true}, false},
		{CellAndNot, []bool{true, false}, true},
		{CellOrNot, []bool{false, true}, false},
		{CellOrNot, []bool{false, false}, true},
		{CellMux, []bool{true, false, false}, true},  // sel=false -> a
		{CellMux, []bool{true, false, true}, false}, // sel=true -> b
	}
	for _, c := range cases {
		got, err := Eval(c.typ, c.ins)
		if err != nil {
			t.Fatalf("Eval(%v, %v): %v", c.typ, c.ins, err)
		}
		if got != c.want {
			t.Errorf("Eval(%v, %v) = %v, want %v", c.typ, c.ins, got, c.want)
		}
	}
}

func TestEvalUnknownType(t *testing.T) {
	if _, err := Eval(CellLUT6, []bool{true}); err == nil {
		t.Errorf("want an error evaluating a non-primitive cell type")
	}
}

func TestRegistryInputPorts(t *testing.T) {
	reg := NewRegistry()
	ports, err := reg.InputPorts(CellMux)
	if err != nil {
		t.Fatalf("InputPorts(CellMux): %v", err)
	}
	if len(ports) != 3 {
		t.Errorf("CellMux must have 3 input ports, got %v", ports)
	}

	if _, err := reg.InputPorts(CellLUT6); err == nil {
		t.Errorf("want an error for a non-primitive type's input ports")
	}
}
